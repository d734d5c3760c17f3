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
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/openconfig/macflush/internal/fdb"
)

type switchCLI struct {
	l *Lab
}

// SendCommand accepts "vtysh -c LINE ...", the OVS dataplane dump, or raw
// CLI lines separated by newlines.
func (c switchCLI) SendCommand(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l := c.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(); err != nil {
		return "", err
	}
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return "", fmt.Errorf("%s: %w", l.name, err)
	}
	if len(args) == 0 {
		return "", nil
	}
	switch args[0] {
	case "vtysh":
		var lines []string
		for i := 1; i < len(args); i++ {
			if args[i] != "-c" || i+1 == len(args) {
				return "", fmt.Errorf("%s: vtysh: bad arguments %q", l.name, args[1:])
			}
			i++
			lines = append(lines, args[i])
		}
		return l.vtysh(lines), nil
	case "ovs-appctl":
		if len(args) < 2 || args[1] != "fdb/show" {
			return "", fmt.Errorf("%s: ovs-appctl: unsupported command %q", l.name, args[1:])
		}
		return l.dump(), nil
	}
	return l.vtysh(strings.Split(cmd, "\n")), nil
}

type mode int

const (
	execMode mode = iota
	configMode
	interfaceMode
	vlanMode
)

// session is the CLI context of one vtysh invocation.
type session struct {
	l    *Lab
	mode mode
	port *port
	vlan string
	out  strings.Builder
	now  time.Time
}

// vtysh runs lines in a fresh CLI session and stops at the first rejected
// line, which is reported with a leading "%".
func (l *Lab) vtysh(lines []string) string {
	s := &session{l: l, now: l.clock.Now()}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := s.exec(strings.Fields(line)); err != nil {
			fmt.Fprintf(&s.out, "%% %v\n", err)
			break
		}
	}
	return s.out.String()
}

func (s *session) exec(f []string) error {
	line := strings.Join(f, " ")
	switch {
	case line == "end":
		s.mode = execMode
		return nil
	case line == "exit":
		switch s.mode {
		case interfaceMode, vlanMode:
			s.mode = configMode
		default:
			s.mode = execMode
		}
		return nil
	}
	switch s.mode {
	case execMode:
		return s.execCmd(f)
	case configMode:
		return s.configCmd(f)
	case interfaceMode:
		return s.interfaceCmd(f)
	case vlanMode:
		return s.vlanCmd(f)
	}
	return fmt.Errorf("unknown command: %s", line)
}

func (s *session) execCmd(f []string) error {
	l := s.l
	switch {
	case len(f) == 2 && f[0] == "configure" && f[1] == "terminal":
		s.mode = configMode
	case len(f) == 2 && f[0] == "show" && f[1] == "mac-address-table":
		s.showMACTable()
	case len(f) == 3 && f[0] == "show" && f[1] == "interface":
		p, ok := l.ports[f[2]]
		if !ok {
			return fmt.Errorf("interface %s does not exist", f[2])
		}
		s.showInterface(p)
	default:
		return fmt.Errorf("unknown command: %s", strings.Join(f, " "))
	}
	return nil
}

func parseVLAN(id string) error {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 || n > 4094 {
		return fmt.Errorf("invalid VLAN id %s", id)
	}
	return nil
}

func (s *session) configCmd(f []string) error {
	l := s.l
	switch {
	case len(f) == 2 && f[0] == "interface":
		p, ok := l.ports[f[1]]
		if !ok {
			return fmt.Errorf("interface %s does not exist", f[1])
		}
		s.mode, s.port = interfaceMode, p
	case len(f) == 2 && f[0] == "vlan":
		if err := parseVLAN(f[1]); err != nil {
			return err
		}
		if _, ok := l.vlans[f[1]]; !ok {
			l.vlans[f[1]] = &vlan{}
		}
		s.mode, s.vlan = vlanMode, f[1]
	case len(f) == 3 && f[0] == "no" && f[1] == "vlan":
		if f[2] == "1" {
			return errors.New("default VLAN 1 cannot be deleted")
		}
		if _, ok := l.vlans[f[2]]; !ok {
			return fmt.Errorf("VLAN %s not found", f[2])
		}
		delete(l.vlans, f[2])
		v := f[2]
		l.flush(s.now, "vlan "+v+" deleted", func(e hwEntry) bool { return e.VLAN == v })
	case len(f) == 3 && f[0] == "mac-address-table" && f[1] == "age-time":
		secs, err := strconv.Atoi(f[2])
		if err != nil || secs < 1 {
			return fmt.Errorf("invalid age-time %s", f[2])
		}
		l.ageTime = time.Duration(secs) * time.Second
	case len(f) == 7 && f[0] == "mac-address-table" && f[1] == "static" && f[3] == "vlan" && f[5] == "interface":
		mac, err := fdb.ParseMAC(f[2])
		if err != nil {
			return fmt.Errorf("invalid MAC address %s", f[2])
		}
		if _, ok := l.vlans[f[4]]; !ok {
			return fmt.Errorf("VLAN %s not found", f[4])
		}
		if _, ok := l.ports[f[6]]; !ok {
			return fmt.Errorf("interface %s does not exist", f[6])
		}
		l.hw[mac] = hwEntry{Entry: fdb.Entry{MAC: mac, VLAN: f[4], Port: f[6], Origin: fdb.Static}, lastSeen: s.now}
		l.commit(s.now)
	case len(f) == 8 && f[0] == "no" && f[1] == "mac-address-table" && f[2] == "static" && f[4] == "vlan" && f[6] == "interface":
		mac, err := fdb.ParseMAC(f[3])
		if err != nil {
			return fmt.Errorf("invalid MAC address %s", f[3])
		}
		if e, ok := l.hw[mac]; ok && e.Origin == fdb.Static {
			delete(l.hw, mac)
			l.commit(s.now)
		}
	default:
		return fmt.Errorf("unknown command: %s", strings.Join(f, " "))
	}
	return nil
}

func (s *session) interfaceCmd(f []string) error {
	l, p := s.l, s.port
	line := strings.Join(f, " ")
	switch {
	case line == "shutdown" || line == "no shutdown":
		down := line == "shutdown"
		if p.shutdown != down {
			p.shutdown, p.changed = down, s.now
		}
		if down {
			l.flush(s.now, "port "+p.name+" down", dynamicOnPort(p.name))
		}
	case line == "routing" || line == "no routing":
		p.routed = line == "routing"
		if p.routed {
			l.flush(s.now, "port "+p.name+" routed", dynamicOnPort(p.name))
		}
	case len(f) == 3 && f[0] == "vlan" && f[1] == "access":
		if p.routed {
			return errors.New("disable routing on the interface")
		}
		if _, ok := l.vlans[f[2]]; !ok {
			return fmt.Errorf("VLAN %s not found", f[2])
		}
		if p.vlan != f[2] {
			p.vlan = f[2]
			l.flush(s.now, "port "+p.name+" moved to vlan "+f[2], dynamicOnPort(p.name))
		}
	default:
		return fmt.Errorf("unknown command: %s", line)
	}
	return nil
}

func (s *session) vlanCmd(f []string) error {
	l := s.l
	line := strings.Join(f, " ")
	switch line {
	case "shutdown":
		l.vlans[s.vlan].shutdown = true
		l.flush(s.now, "vlan "+s.vlan+" down", dynamicInVLAN(s.vlan))
	case "no shutdown":
		l.vlans[s.vlan].shutdown = false
	default:
		return fmt.Errorf("unknown command: %s", line)
	}
	return nil
}

func (s *session) showMACTable() {
	es := s.l.table(s.now)
	if len(es) == 0 {
		fmt.Fprintf(&s.out, "No MAC entries found.\n")
		return
	}
	fmt.Fprintf(&s.out, "MAC age-time            : %d seconds\n", int(s.l.ageTime.Seconds()))
	fmt.Fprintf(&s.out, "Number of MAC addresses : %d\n\n", len(es))
	fmt.Fprintf(&s.out, "%-21s%-9s%-26s%s\n", "MAC Address", "VLAN", "Type", "Port")
	fmt.Fprintf(&s.out, "%s\n", strings.Repeat("-", 50))
	for _, e := range es {
		fmt.Fprintf(&s.out, "%-20s%-10s%-26s%s\n", e.MAC, e.VLAN, e.Origin, e.Port)
	}
}

func (s *session) showInterface(p *port) {
	state, reason := "down", ""
	if s.l.linkUp(p, s.now) {
		state = "up"
	} else if p.shutdown {
		reason = " (Administratively down)"
	}
	admin := "up"
	if p.shutdown {
		admin = "down"
	}
	fmt.Fprintf(&s.out, "\nInterface %s is %s%s\n", p.name, state, reason)
	fmt.Fprintf(&s.out, " Admin state is %s\n", admin)
	if p.routed {
		fmt.Fprintf(&s.out, " Routing: enabled\n")
	} else {
		fmt.Fprintf(&s.out, " Access VLAN: %s\n", p.vlan)
	}
}

// dump prints the dataplane table in "ovs-appctl fdb/show" form.
func (l *Lab) dump() string {
	now := l.clock.Now()
	var b strings.Builder
	fmt.Fprintf(&b, " port  VLAN  MAC                Age\n")
	for _, e := range l.dataplane(now) {
		age := "?"
		if e.Origin == fdb.Dynamic {
			age = strconv.Itoa(int(now.Sub(e.lastSeen).Seconds()))
		}
		fmt.Fprintf(&b, "%5s  %4s  %s  %3s\n", e.Port, e.VLAN, e.MAC, age)
	}
	return b.String()
}
