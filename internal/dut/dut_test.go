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

package dut

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-shellwords"
	"github.com/openconfig/macflush/internal/fdb"
)

// recordingCLI records commands and answers from a canned table.
type recordingCLI struct {
	cmds    []string
	replies map[string]string
	err     error
}

func (r *recordingCLI) SendCommand(_ context.Context, cmd string) (string, error) {
	r.cmds = append(r.cmds, cmd)
	if r.err != nil {
		return "", r.err
	}
	return r.replies[cmd], nil
}

// vtyshLines undoes the vtysh wrapping of a recorded command.
func vtyshLines(t *testing.T, cmd string) []string {
	t.Helper()
	args, err := shellwords.Parse(cmd)
	if err != nil {
		t.Fatalf("shellwords.Parse(%q) failed: %v", cmd, err)
	}
	if len(args) == 0 || args[0] != "vtysh" {
		t.Fatalf("command %q does not start with vtysh", cmd)
	}
	var lines []string
	for i := 1; i+1 < len(args); i += 2 {
		if args[i] != "-c" {
			t.Fatalf("command %q: unexpected argument %q", cmd, args[i])
		}
		lines = append(lines, args[i+1])
	}
	return lines
}

func newSwitch(t *testing.T, cli *recordingCLI, opts Options) *Switch {
	t.Helper()
	sw, err := New("sw1", cli, nil, opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return sw
}

func TestConfigInterfaceCommitsOneBlock(t *testing.T) {
	cli := &recordingCLI{}
	sw := newSwitch(t, cli, Options{})

	err := sw.ConfigInterface(context.Background(), "1", func(ic *InterfaceConfig) error {
		ic.Routing(false)
		ic.Shutdown(false)
		ic.AccessVLAN("10")
		return nil
	})
	if err != nil {
		t.Fatalf("ConfigInterface() failed: %v", err)
	}
	if len(cli.cmds) != 1 {
		t.Fatalf("ConfigInterface() sent %d commands, want 1: %q", len(cli.cmds), cli.cmds)
	}
	want := []string{"configure terminal", "interface 1", "no routing", "no shutdown", "vlan access 10", "exit", "end"}
	if diff := cmp.Diff(want, vtyshLines(t, cli.cmds[0])); diff != "" {
		t.Errorf("ConfigInterface() lines -want, +got:\n%s", diff)
	}
}

func TestConfigureRawDialect(t *testing.T) {
	cli := &recordingCLI{}
	sw := newSwitch(t, cli, Options{Dialect: Raw})

	if err := sw.ConfigVLAN(context.Background(), "10", func(vc *VLANConfig) error {
		vc.Shutdown(true)
		return nil
	}); err != nil {
		t.Fatalf("ConfigVLAN() failed: %v", err)
	}
	want := []string{"configure terminal\nvlan 10\nshutdown\nexit\nend"}
	if diff := cmp.Diff(want, cli.cmds); diff != "" {
		t.Errorf("ConfigVLAN() commands -want, +got:\n%s", diff)
	}
}

func TestConfigureGlobal(t *testing.T) {
	cli := &recordingCLI{}
	sw := newSwitch(t, cli, Options{})
	ctx := context.Background()

	if err := sw.SetAgeTime(ctx, 30*time.Second); err != nil {
		t.Fatalf("SetAgeTime() failed: %v", err)
	}
	if err := sw.AddStaticMAC(ctx, fdb.Entry{MAC: "00:00:00:00:AA:BB", VLAN: "10", Port: "3", Origin: fdb.Static}); err != nil {
		t.Fatalf("AddStaticMAC() failed: %v", err)
	}
	if err := sw.RemoveStaticMAC(ctx, fdb.Entry{MAC: "00:00:00:00:AA:BB", VLAN: "10", Port: "3"}); err != nil {
		t.Fatalf("RemoveStaticMAC() failed: %v", err)
	}
	if err := sw.DeleteVLAN(ctx, "10"); err != nil {
		t.Fatalf("DeleteVLAN() failed: %v", err)
	}

	var got [][]string
	for _, c := range cli.cmds {
		got = append(got, vtyshLines(t, c))
	}
	want := [][]string{
		{"configure terminal", "mac-address-table age-time 30", "end"},
		{"configure terminal", "mac-address-table static 00:00:00:00:aa:bb vlan 10 interface 3", "end"},
		{"configure terminal", "no mac-address-table static 00:00:00:00:aa:bb vlan 10 interface 3", "end"},
		{"configure terminal", "no vlan 10", "end"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sessions -want, +got:\n%s", diff)
	}
}

func TestSetAgeTimeRejectsSubSecond(t *testing.T) {
	cli := &recordingCLI{}
	sw := newSwitch(t, cli, Options{})
	if err := sw.SetAgeTime(context.Background(), 10*time.Millisecond); err == nil {
		t.Error("SetAgeTime(10ms) returned no error")
	}
	if len(cli.cmds) != 0 {
		t.Errorf("SetAgeTime(10ms) sent %q", cli.cmds)
	}
}

func TestConfigureDiscardsOnError(t *testing.T) {
	cli := &recordingCLI{}
	sw := newSwitch(t, cli, Options{})
	wantErr := errors.New("bad port")

	err := sw.ConfigInterface(context.Background(), "1", func(ic *InterfaceConfig) error {
		ic.Shutdown(true)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("ConfigInterface() error = %v, want %v", err, wantErr)
	}
	if len(cli.cmds) != 0 {
		t.Errorf("ConfigInterface() sent %q after fn failed", cli.cmds)
	}
}

func TestConfigureDiscardsOnPanic(t *testing.T) {
	cli := &recordingCLI{}
	sw := newSwitch(t, cli, Options{})

	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recover() = %v, want boom", r)
		}
		if len(cli.cmds) != 0 {
			t.Errorf("Configure() sent %q after fn panicked", cli.cmds)
		}
	}()
	sw.Configure(context.Background(), func(c *Config) error {
		c.NoVLAN("10")
		panic("boom")
	})
}

func TestConfigureRejectedLine(t *testing.T) {
	cli := &recordingCLI{replies: map[string]string{
		"vtysh -c 'configure terminal' -c 'vlan 5000' -c 'exit' -c 'end'": "% Invalid VLAN id 5000\n",
	}}
	sw := newSwitch(t, cli, Options{})
	err := sw.ConfigVLAN(context.Background(), "5000", func(*VLANConfig) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "Invalid VLAN") {
		t.Errorf("ConfigVLAN(5000) error = %v, want the CLI complaint", err)
	}
}

func TestMACTableCLI(t *testing.T) {
	cli := &recordingCLI{replies: map[string]string{
		"vtysh -c 'show mac-address-table'": `MAC age-time            : 300 seconds
Number of MAC addresses : 1

MAC Address          VLAN     Type                      Port
--------------------------------------------------
00:00:00:00:00:01   10        dynamic                   1
`,
	}}
	sw := newSwitch(t, cli, Options{})

	tbl, err := sw.MACTable(context.Background())
	if err != nil {
		t.Fatalf("MACTable() failed: %v", err)
	}
	want := []fdb.Entry{{MAC: "00:00:00:00:00:01", VLAN: "10", Port: "1", Origin: fdb.Dynamic}}
	if diff := cmp.Diff(want, tbl.Entries()); diff != "" {
		t.Errorf("MACTable() -want, +got:\n%s", diff)
	}
	if tbl.AgeTime != 300*time.Second {
		t.Errorf("MACTable() AgeTime = %v, want 300s", tbl.AgeTime)
	}
}

type fakeState struct {
	path string
	val  []byte
}

func (f *fakeState) GetJSON(_ context.Context, path string) ([]byte, error) {
	f.path = path
	return f.val, nil
}

func TestMACTableGNMI(t *testing.T) {
	state := &fakeState{val: []byte(`{"openconfig-network-instance:entry":[{"mac-address":"00:00:00:00:00:02","vlan":10,
		"state":{"mac-address":"00:00:00:00:00:02","vlan":10,"entry-type":"DYNAMIC"},
		"interface":{"interface-ref":{"state":{"interface":"2"}}}}]}`)}
	sw, err := New("sw1", &recordingCLI{}, state, Options{Source: SourceGNMI})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	tbl, err := sw.MACTable(context.Background())
	if err != nil {
		t.Fatalf("MACTable() failed: %v", err)
	}
	if state.path != MACTablePath {
		t.Errorf("MACTable() read %q, want %q", state.path, MACTablePath)
	}
	want := []fdb.Entry{{MAC: "00:00:00:00:00:02", VLAN: "10", Port: "2", Origin: fdb.Dynamic}}
	if diff := cmp.Diff(want, tbl.Entries()); diff != "" {
		t.Errorf("MACTable() -want, +got:\n%s", diff)
	}
}

func TestMACTableQueryError(t *testing.T) {
	sw := newSwitch(t, &recordingCLI{err: errors.New("ssh: handshake failed")}, Options{})
	if _, err := sw.MACTable(context.Background()); err == nil || !strings.Contains(err.Error(), "handshake") {
		t.Errorf("MACTable() error = %v, want the transport error", err)
	}
}

func TestLinkUp(t *testing.T) {
	cli := &recordingCLI{replies: map[string]string{
		"vtysh -c 'show interface 1'": "Interface 1 is up\n Admin state is up\n",
		"vtysh -c 'show interface 2'": "Interface 2 is down (Administratively down)\n Admin state is down\n",
	}}
	sw := newSwitch(t, cli, Options{})
	ctx := context.Background()

	for port, want := range map[string]bool{"1": true, "2": false} {
		got, err := sw.LinkUp(ctx, port)
		if err != nil {
			t.Fatalf("LinkUp(%s) failed: %v", port, err)
		}
		if got != want {
			t.Errorf("LinkUp(%s) = %v, want %v", port, got, want)
		}
	}
	if _, err := sw.LinkUp(ctx, "9"); err == nil {
		t.Error("LinkUp(9) with no output returned no error")
	}
}

func TestDataplaneDump(t *testing.T) {
	cli := &recordingCLI{replies: map[string]string{DefaultDumpCommand: " port  VLAN  MAC                Age\n"}}
	sw := newSwitch(t, cli, Options{})
	if _, err := sw.DataplaneDump(context.Background()); err != nil {
		t.Fatalf("DataplaneDump() failed: %v", err)
	}
	if diff := cmp.Diff([]string{DefaultDumpCommand}, cli.cmds); diff != "" {
		t.Errorf("DataplaneDump() commands -want, +got:\n%s", diff)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	for name, opts := range map[string]Options{
		"dialect":       {Dialect: "netconf"},
		"source":        {Source: "snmp"},
		"gnmi no state": {Source: SourceGNMI},
	} {
		if _, err := New("sw1", &recordingCLI{}, nil, opts); err == nil {
			t.Errorf("New(%s) returned no error", name)
		}
	}
}
