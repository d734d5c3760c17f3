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

package host

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordingCLI struct {
	cmds    []string
	replies map[string]string
	errs    map[string]error
}

func (r *recordingCLI) SendCommand(_ context.Context, cmd string) (string, error) {
	r.cmds = append(r.cmds, cmd)
	return r.replies[cmd], r.errs[cmd]
}

func TestAddressing(t *testing.T) {
	cli := &recordingCLI{replies: map[string]string{
		"cat /sys/class/net/eth1/address": "00:00:00:00:00:01\n",
	}}
	h := New("hs1", "", cli)
	ctx := context.Background()

	if err := h.SetMAC(ctx, "00:00:00:00:00:01"); err != nil {
		t.Fatalf("SetMAC() failed: %v", err)
	}
	if err := h.SetIP(ctx, "10.0.10.1/24"); err != nil {
		t.Fatalf("SetIP() failed: %v", err)
	}
	if err := h.Down(ctx); err != nil {
		t.Fatalf("Down() failed: %v", err)
	}
	if err := h.Up(ctx); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	mac, err := h.MAC(ctx)
	if err != nil {
		t.Fatalf("MAC() failed: %v", err)
	}
	if mac != "00:00:00:00:00:01" {
		t.Errorf("MAC() = %q, want 00:00:00:00:00:01", mac)
	}

	want := []string{
		"ip link set dev eth1 address 00:00:00:00:00:01",
		"ip addr replace 10.0.10.1/24 dev eth1",
		"ip link set dev eth1 down",
		"ip link set dev eth1 up",
		"cat /sys/class/net/eth1/address",
	}
	if diff := cmp.Diff(want, cli.cmds); diff != "" {
		t.Errorf("commands -want, +got:\n%s", diff)
	}
}

func TestAddressingRejectsBadInput(t *testing.T) {
	cli := &recordingCLI{}
	h := New("hs1", "eth2", cli)
	ctx := context.Background()
	if err := h.SetMAC(ctx, "00:00:00:00:00"); err == nil {
		t.Error("SetMAC() with short address returned no error")
	}
	if err := h.SetIP(ctx, "10.0.10.1"); err == nil {
		t.Error("SetIP() without prefix length returned no error")
	}
	if _, err := h.Ping(ctx, "hs2", 1); err == nil {
		t.Error("Ping() with host name returned no error")
	}
	if len(cli.cmds) != 0 {
		t.Errorf("bad input still sent %q", cli.cmds)
	}
}

func TestPing(t *testing.T) {
	exitErr := errors.New("exit status 1")
	cli := &recordingCLI{
		replies: map[string]string{
			"ping -c 1 -W 1 10.0.10.2": "PING 10.0.10.2 (10.0.10.2) 56(84) bytes of data.\n" +
				"64 bytes from 10.0.10.2: icmp_seq=1 ttl=64 time=0.512 ms\n\n" +
				"--- 10.0.10.2 ping statistics ---\n" +
				"1 packets transmitted, 1 received, 0% packet loss, time 0ms\n",
			"ping -c 3 -W 1 10.0.10.9": "PING 10.0.10.9 (10.0.10.9): 56 data bytes\n\n" +
				"--- 10.0.10.9 ping statistics ---\n" +
				"3 packets transmitted, 0 packets received, 100% packet loss\n",
		},
		errs: map[string]error{
			"ping -c 3 -W 1 10.0.10.9": exitErr,
			"ping -c 1 -W 1 10.0.10.7": exitErr,
		},
	}
	h := New("hs1", "", cli)
	ctx := context.Background()

	got, err := h.Ping(ctx, "10.0.10.2", 1)
	if err != nil {
		t.Fatalf("Ping(10.0.10.2) failed: %v", err)
	}
	if diff := cmp.Diff(PingResult{Transmitted: 1, Received: 1}, got); diff != "" {
		t.Errorf("Ping(10.0.10.2) -want, +got:\n%s", diff)
	}
	if !got.OK() {
		t.Error("Ping(10.0.10.2).OK() = false")
	}

	got, err = h.Ping(ctx, "10.0.10.9", 3)
	if err != nil {
		t.Fatalf("Ping(10.0.10.9) with loss failed: %v", err)
	}
	if diff := cmp.Diff(PingResult{Transmitted: 3, Loss: 100}, got); diff != "" {
		t.Errorf("Ping(10.0.10.9) -want, +got:\n%s", diff)
	}

	if _, err := h.Ping(ctx, "10.0.10.7", 1); !errors.Is(err, exitErr) {
		t.Errorf("Ping(10.0.10.7) error = %v, want %v", err, exitErr)
	}
}
