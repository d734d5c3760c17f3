// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"

	log "github.com/golang/glog"
	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/openconfig/ygot/ygot"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/prototext"
)

// IANA assigns 9339 for gNxI.
var gnmiPort = flag.Int("gnmi_port", 9339, "default gNMI port")

// creds implements the grpc.PerRPCCredentials interface, to be used
// as a grpc.DialOption in DialGNMI.
type creds struct {
	username, password string
	secure             bool
}

func (c *creds) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{
		"username": c.username,
		"password": c.password,
	}, nil
}

func (c *creds) RequireTransportSecurity() bool {
	return c.secure
}

var _ = grpc.PerRPCCredentials(&creds{})

// GNMI reads switch state over gNMI.
type GNMI struct {
	conn   *grpc.ClientConn
	client gpb.GNMIClient
}

// NewGNMI wraps an established connection.
func NewGNMI(conn *grpc.ClientConn) *GNMI {
	return &GNMI{conn: conn, client: gpb.NewGNMIClient(conn)}
}

// DialGNMI dials a gNMI connection using the options. A target without a
// port uses the -gnmi_port flag.
func DialGNMI(ctx context.Context, o Options, opts ...grpc.DialOption) (*GNMI, error) {
	switch {
	case o.Insecure:
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	case o.SkipVerify:
		tc := credentials.NewTLS(&tls.Config{InsecureSkipVerify: true})
		opts = append(opts, grpc.WithTransportCredentials(tc))
	default:
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
	}
	if o.Username != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(&creds{o.Username, o.Password, !o.Insecure}))
	}
	target := o.Target
	if _, _, err := net.SplitHostPort(target); err != nil {
		target = net.JoinHostPort(target, strconv.Itoa(*gnmiPort))
	}
	if o.Timeout != 0 {
		retryOpt := grpc_retry.WithPerRetryTimeout(time.Duration(o.Timeout) * time.Second)
		opts = append(opts,
			grpc.WithStreamInterceptor(grpc_retry.StreamClientInterceptor(retryOpt)),
			grpc.WithUnaryInterceptor(grpc_retry.UnaryClientInterceptor(retryOpt)),
		)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.Timeout)*time.Second)
		defer cancel()
	}
	conn, err := grpc.DialContext(ctx, target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dialing gnmi %s: %w", target, err)
	}
	return NewGNMI(conn), nil
}

// GetJSON fetches the state at path, e.g.
// "/network-instances/network-instance[name=default]/fdb/mac-table/entries",
// and returns its JSON_IETF value. A path with no data yields "{}".
func (g *GNMI) GetJSON(ctx context.Context, path string) ([]byte, error) {
	p, err := ygot.StringToStructuredPath(path)
	if err != nil {
		return nil, fmt.Errorf("bad gnmi path %q: %w", path, err)
	}
	req := &gpb.GetRequest{
		Path:     []*gpb.Path{p},
		Type:     gpb.GetRequest_STATE,
		Encoding: gpb.Encoding_JSON_IETF,
	}
	log.V(2).Infof("gnmi get: %s", prototext.Format(req))
	resp, err := g.client.Get(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("gnmi get %s: %w", path, err)
	}
	for _, n := range resp.GetNotification() {
		for _, u := range n.GetUpdate() {
			if b := u.GetVal().GetJsonIetfVal(); b != nil {
				return b, nil
			}
			if b := u.GetVal().GetJsonVal(); b != nil {
				return b, nil
			}
		}
	}
	return []byte("{}"), nil
}

// Close closes the connection.
func (g *GNMI) Close() error {
	return g.conn.Close()
}
