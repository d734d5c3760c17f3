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

// Package host drives the emulated endpoints that send traffic through the
// switch under test.
package host

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"github.com/openconfig/macflush/internal/fdb"
	"github.com/openconfig/macflush/internal/textfsm"
	"github.com/openconfig/macflush/internal/transport"
)

// DefaultInterface is the host side of the link to the switch.
const DefaultInterface = "eth1"

// Host is one endpoint of the topology.
type Host struct {
	Name string
	// Interface is the host interface cabled to the switch.
	Interface string
	cli       transport.Commander
}

// New returns a host driven over cli.
func New(name, iface string, cli transport.Commander) *Host {
	if iface == "" {
		iface = DefaultInterface
	}
	return &Host{Name: name, Interface: iface, cli: cli}
}

func (h *Host) run(ctx context.Context, format string, args ...any) (string, error) {
	cmd := fmt.Sprintf(format, args...)
	out, err := h.cli.SendCommand(ctx, cmd)
	log.V(1).Infof("%s: %q -> %q", h.Name, cmd, out)
	if err != nil {
		return out, fmt.Errorf("%s: %w", h.Name, err)
	}
	return out, nil
}

// SetMAC assigns the hardware address of the interface.
func (h *Host) SetMAC(ctx context.Context, mac string) error {
	norm, err := fdb.ParseMAC(mac)
	if err != nil {
		return err
	}
	_, err = h.run(ctx, "ip link set dev %s address %s", h.Interface, norm)
	return err
}

// MAC reads back the hardware address of the interface.
func (h *Host) MAC(ctx context.Context) (string, error) {
	out, err := h.run(ctx, "cat /sys/class/net/%s/address", h.Interface)
	if err != nil {
		return "", err
	}
	return fdb.ParseMAC(out)
}

// SetIP replaces the address of the interface; cidr is e.g. "10.0.10.1/24".
func (h *Host) SetIP(ctx context.Context, cidr string) error {
	if _, err := netip.ParsePrefix(cidr); err != nil {
		return fmt.Errorf("%s: %w", h.Name, err)
	}
	_, err := h.run(ctx, "ip addr replace %s dev %s", cidr, h.Interface)
	return err
}

// Up brings the interface up.
func (h *Host) Up(ctx context.Context) error {
	_, err := h.run(ctx, "ip link set dev %s up", h.Interface)
	return err
}

// Down takes the interface down.
func (h *Host) Down(ctx context.Context) error {
	_, err := h.run(ctx, "ip link set dev %s down", h.Interface)
	return err
}

// PingResult summarizes one ping run.
type PingResult struct {
	Transmitted int
	Received    int
	// Loss is the packet loss in percent.
	Loss float64
}

// OK reports whether at least one reply came back.
func (r PingResult) OK() bool { return r.Received > 0 }

// Ping sends count echo requests to dst. Packet loss is not an error; the
// caller decides from the result. An error means no summary was printed.
func (h *Host) Ping(ctx context.Context, dst string, count int) (PingResult, error) {
	if _, err := netip.ParseAddr(dst); err != nil {
		return PingResult{}, fmt.Errorf("%s: %w", h.Name, err)
	}
	if count < 1 {
		count = 1
	}
	out, runErr := h.run(ctx, "ping -c %d -W 1 %s", count, dst)
	p := &textfsm.Ping{}
	if err := p.Parse(out); err != nil || len(p.Rows) == 0 {
		if runErr != nil {
			return PingResult{}, runErr
		}
		return PingResult{}, fmt.Errorf("%s: no ping summary in %q", h.Name, strings.TrimSpace(out))
	}
	row := p.Rows[len(p.Rows)-1]
	var res PingResult
	var err error
	if res.Transmitted, err = strconv.Atoi(row.Transmitted); err != nil {
		return PingResult{}, err
	}
	if res.Received, err = strconv.Atoi(row.Received); err != nil {
		return PingResult{}, err
	}
	if res.Loss, err = strconv.ParseFloat(row.Loss, 64); err != nil {
		return PingResult{}, err
	}
	return res, nil
}
