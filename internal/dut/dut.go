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

// Package dut drives the switch under test: scoped configuration sessions
// and read-only queries of its address table, dataplane and links.
package dut

import (
	"context"
	"fmt"
	"strings"

	log "github.com/golang/glog"
	"github.com/openconfig/macflush/internal/fdb"
	"github.com/openconfig/macflush/internal/textfsm"
	"github.com/openconfig/macflush/internal/transport"
)

// Dialect is how configuration and show commands are handed to the CLI
// transport.
type Dialect string

const (
	// VTYSH wraps every line in a "vtysh -c" argument of one shell command.
	VTYSH Dialect = "vtysh"
	// Raw sends the lines joined by newlines, for transports that already
	// land in the switch CLI.
	Raw Dialect = "raw"
)

// Source selects where MACTable reads the address table from.
type Source string

const (
	SourceCLI  Source = "cli"
	SourceGNMI Source = "gnmi"
)

const (
	// DefaultDumpCommand prints the learned addresses of the OVS bridge.
	DefaultDumpCommand = "ovs-appctl fdb/show bridge_normal"
	// MACTablePath is the OpenConfig path of the address table.
	MACTablePath = "/network-instances/network-instance[name=default]/fdb/mac-table/entries"
)

// StateGetter reads JSON_IETF state, implemented by *transport.GNMI.
type StateGetter interface {
	GetJSON(ctx context.Context, path string) ([]byte, error)
}

// Options tune how the switch is driven.
type Options struct {
	Dialect     Dialect `yaml:"cli_dialect,omitempty"`
	Source      Source  `yaml:"mac_table_source,omitempty"`
	DumpCommand string  `yaml:"dump_command,omitempty"`
}

// Switch is the switch under test.
type Switch struct {
	Name  string
	cli   transport.Commander
	state StateGetter
	opts  Options
}

// New returns a switch driven over cli. state may be nil unless the address
// table is read over gNMI.
func New(name string, cli transport.Commander, state StateGetter, opts Options) (*Switch, error) {
	if cli == nil {
		return nil, fmt.Errorf("switch %s: no CLI transport", name)
	}
	if opts.Dialect == "" {
		opts.Dialect = VTYSH
	}
	if opts.Source == "" {
		opts.Source = SourceCLI
	}
	if opts.DumpCommand == "" {
		opts.DumpCommand = DefaultDumpCommand
	}
	switch opts.Dialect {
	case VTYSH, Raw:
	default:
		return nil, fmt.Errorf("switch %s: unknown CLI dialect %q", name, opts.Dialect)
	}
	switch opts.Source {
	case SourceCLI:
	case SourceGNMI:
		if state == nil {
			return nil, fmt.Errorf("switch %s: mac table source %q needs a gNMI connection", name, opts.Source)
		}
	default:
		return nil, fmt.Errorf("switch %s: unknown mac table source %q", name, opts.Source)
	}
	return &Switch{Name: name, cli: cli, state: state, opts: opts}, nil
}

// Options returns the effective options.
func (s *Switch) Options() Options { return s.opts }

// run sends lines to the CLI as one command. Lines the CLI rejects are
// reported as errors.
func (s *Switch) run(ctx context.Context, lines ...string) (string, error) {
	cmd := strings.Join(lines, "\n")
	if s.opts.Dialect == VTYSH {
		args := []string{"vtysh"}
		for _, l := range lines {
			args = append(args, "-c", shellQuote(l))
		}
		cmd = strings.Join(args, " ")
	}
	log.V(1).Infof("%s: %q", s.Name, cmd)
	out, err := s.cli.SendCommand(ctx, cmd)
	if err != nil {
		return out, fmt.Errorf("%s: %w", s.Name, err)
	}
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "%") {
			return out, fmt.Errorf("%s rejected %q: %s", s.Name, lines, strings.TrimSpace(l))
		}
	}
	return out, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// MACTable fetches a fresh snapshot of the address table.
func (s *Switch) MACTable(ctx context.Context) (*fdb.Table, error) {
	if s.opts.Source == SourceGNMI {
		val, err := s.state.GetJSON(ctx, MACTablePath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		return fdb.ParseGNMI(val)
	}
	out, err := s.run(ctx, "show mac-address-table")
	if err != nil {
		return nil, err
	}
	return fdb.ParseCLI(out)
}

// DataplaneDump returns the raw learned-address dump of the dataplane. It is
// run in the switch shell, not in the CLI.
func (s *Switch) DataplaneDump(ctx context.Context) (string, error) {
	out, err := s.cli.SendCommand(ctx, s.opts.DumpCommand)
	if err != nil {
		return out, fmt.Errorf("%s: %w", s.Name, err)
	}
	return out, nil
}

// LinkUp reports whether port is operationally up.
func (s *Switch) LinkUp(ctx context.Context, port string) (bool, error) {
	out, err := s.run(ctx, "show interface "+port)
	if err != nil {
		return false, err
	}
	p := &textfsm.ShowInterface{}
	if err := p.Parse(out); err != nil {
		return false, fmt.Errorf("parsing show interface %s: %w", port, err)
	}
	for _, row := range p.Rows {
		if row.Interface == port {
			return row.LinkState == "up", nil
		}
	}
	return false, fmt.Errorf("%s: no interface %q in output %q", s.Name, port, out)
}
