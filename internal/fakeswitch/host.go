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

package fakeswitch

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/openconfig/macflush/internal/fdb"
)

// errPingLoss stands in for the non-zero exit status of ping.
var errPingLoss = errors.New("exit status 1")

type hostShell struct {
	l *Lab
	h *host
}

// SendCommand accepts the ip, cat and ping commands used by package host.
func (c hostShell) SendCommand(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l, h := c.l, c.h
	l.mu.Lock()
	defer l.mu.Unlock()
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return "", fmt.Errorf("%s: %w", h.name, err)
	}
	switch {
	case len(args) == 6 && args[0] == "ip" && args[1] == "link" && args[2] == "set" && args[3] == "dev":
		if args[4] != h.iface {
			return "", fmt.Errorf("%s: no device %s", h.name, args[4])
		}
		return "", c.setLink(args[5])
	case len(args) == 7 && args[0] == "ip" && args[1] == "link" && args[2] == "set" && args[3] == "dev" && args[5] == "address":
		if args[4] != h.iface {
			return "", fmt.Errorf("%s: no device %s", h.name, args[4])
		}
		mac, err := fdb.ParseMAC(args[6])
		if err != nil {
			return "", err
		}
		h.mac = mac
		return "", nil
	case len(args) == 6 && args[0] == "ip" && args[1] == "addr" && args[2] == "replace" && args[4] == "dev":
		if args[5] != h.iface {
			return "", fmt.Errorf("%s: no device %s", h.name, args[5])
		}
		pfx, err := netip.ParsePrefix(args[3])
		if err != nil {
			return "", err
		}
		h.addr = pfx
		return "", nil
	case len(args) == 2 && args[0] == "cat" && args[1] == "/sys/class/net/"+h.iface+"/address":
		return h.mac + "\n", nil
	case len(args) >= 2 && args[0] == "ping":
		return c.ping(args[1:])
	}
	return "", fmt.Errorf("%s: unsupported command %q", h.name, cmd)
}

func (c hostShell) setLink(state string) error {
	l, h := c.l, c.h
	switch state {
	case "up", "down":
	default:
		return fmt.Errorf("%s: bad link state %q", h.name, state)
	}
	up := state == "up"
	if h.up == up {
		return nil
	}
	now := l.clock.Now()
	h.up = up
	if p := h.port; p != nil {
		p.changed = now
		if !up {
			l.flush(now, "port "+p.name+" lost carrier", dynamicOnPort(p.name))
		}
	}
	return nil
}

// ping answers "ping -c COUNT [-W SECS] DST" in iputils format.
func (c hostShell) ping(args []string) (string, error) {
	count := 1
	var dst string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "-W":
			if i+1 == len(args) {
				return "", fmt.Errorf("ping: option %s needs a value", args[i])
			}
			if args[i] == "-c" {
				n, err := strconv.Atoi(args[i+1])
				if err != nil || n < 1 {
					return "", fmt.Errorf("ping: bad count %q", args[i+1])
				}
				count = n
			}
			i++
		default:
			dst = args[i]
		}
	}
	addr, err := netip.ParseAddr(dst)
	if err != nil {
		return "", fmt.Errorf("ping: %s: Name or service not known", dst)
	}
	got := c.l.ping(c.h, addr, count)

	var b strings.Builder
	fmt.Fprintf(&b, "PING %s (%s) 56(84) bytes of data.\n", addr, addr)
	for i := 1; i <= got; i++ {
		fmt.Fprintf(&b, "64 bytes from %s: icmp_seq=%d ttl=64 time=0.100 ms\n", addr, i)
	}
	fmt.Fprintf(&b, "\n--- %s ping statistics ---\n", addr)
	loss := 100 * (count - got) / count
	fmt.Fprintf(&b, "%d packets transmitted, %d received, %d%% packet loss, time 0ms\n", count, got, loss)
	if got == 0 {
		return b.String(), errPingLoss
	}
	return b.String(), nil
}
