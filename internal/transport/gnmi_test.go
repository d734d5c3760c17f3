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
	"net"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/openconfig/ygot/ygot"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeGNMI answers Get with a fixed JSON_IETF value and records the request.
type fakeGNMI struct {
	gpb.UnimplementedGNMIServer
	val     []byte
	lastReq *gpb.GetRequest
}

func (f *fakeGNMI) Get(_ context.Context, req *gpb.GetRequest) (*gpb.GetResponse, error) {
	f.lastReq = req
	if req.GetEncoding() != gpb.Encoding_JSON_IETF {
		return nil, status.Errorf(codes.Unimplemented, "encoding %v", req.GetEncoding())
	}
	if f.val == nil {
		return &gpb.GetResponse{Notification: []*gpb.Notification{{}}}, nil
	}
	return &gpb.GetResponse{
		Notification: []*gpb.Notification{{
			Update: []*gpb.Update{{
				Path: req.GetPath()[0],
				Val:  &gpb.TypedValue{Value: &gpb.TypedValue_JsonIetfVal{JsonIetfVal: f.val}},
			}},
		}},
	}, nil
}

func startGNMI(t *testing.T, srv *fakeGNMI) *GNMI {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	gpb.RegisterGNMIServer(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	g, err := DialGNMI(context.Background(), Options{Target: "bufnet", Insecure: true, Username: "admin", Password: "admin"}, grpc.WithContextDialer(dialer))
	if err != nil {
		t.Fatalf("DialGNMI() failed: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

const macTablePath = "/network-instances/network-instance[name=default]/fdb/mac-table/entries"

func TestGNMIGetJSON(t *testing.T) {
	want := []byte(`{"openconfig-network-instance:entry":[]}`)
	srv := &fakeGNMI{val: want}
	g := startGNMI(t, srv)

	got, err := g.GetJSON(context.Background(), macTablePath)
	if err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("GetJSON() -want, +got:\n%s", diff)
	}

	gotPath, err := ygot.PathToString(srv.lastReq.GetPath()[0])
	if err != nil {
		t.Fatalf("PathToString() failed: %v", err)
	}
	if gotPath != macTablePath {
		t.Errorf("GetRequest path = %q, want %q", gotPath, macTablePath)
	}
	if srv.lastReq.GetType() != gpb.GetRequest_STATE {
		t.Errorf("GetRequest type = %v, want STATE", srv.lastReq.GetType())
	}
}

func TestGNMIGetJSONNoData(t *testing.T) {
	g := startGNMI(t, &fakeGNMI{})
	got, err := g.GetJSON(context.Background(), macTablePath)
	if err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("GetJSON() = %q, want {}", got)
	}
}

func TestGNMIGetJSONBadPath(t *testing.T) {
	srv := &fakeGNMI{}
	g := startGNMI(t, srv)
	for _, path := range []string{
		"/interfaces/interface[name=]/state",
		"/interfaces/interface]",
		"/interfaces/interface[name=1]counters",
	} {
		_, err := g.GetJSON(context.Background(), path)
		if err == nil || !strings.Contains(err.Error(), "bad gnmi path") {
			t.Errorf("GetJSON(%q) error = %v, want a bad path error", path, err)
		}
	}
	if srv.lastReq != nil {
		t.Errorf("malformed paths reached the server: %v", srv.lastReq)
	}
}
