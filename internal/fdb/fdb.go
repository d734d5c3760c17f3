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

// Package fdb models the MAC address table of a switch as seen from the
// outside: a read-only snapshot keyed by hardware address, fetched fresh on
// every query.
package fdb

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Origin says whether an entry was learned or configured.
type Origin string

const (
	// Dynamic entries are learned from traffic and age out.
	Dynamic Origin = "dynamic"
	// Static entries are configured by the operator.
	Static Origin = "static"
)

// ParseOrigin accepts the CLI and OpenConfig spellings of an entry type.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dynamic", "learned":
		return Dynamic, nil
	case "static":
		return Static, nil
	}
	return "", fmt.Errorf("unknown MAC entry type %q", s)
}

// ParseMAC normalizes a 48-bit hardware address to lower-case colon form.
func ParseMAC(s string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	if len(hw) != 6 {
		return "", fmt.Errorf("%q is not a 48-bit MAC address", s)
	}
	return hw.String(), nil
}

// Entry is one row of the address table.
type Entry struct {
	MAC    string
	VLAN   string
	Port   string
	Origin Origin
}

func (e Entry) String() string {
	return fmt.Sprintf("%s vlan %s port %s (%s)", e.MAC, e.VLAN, e.Port, e.Origin)
}

func (e Entry) validate() error {
	if _, err := ParseMAC(e.MAC); err != nil {
		return err
	}
	if _, err := strconv.ParseUint(e.VLAN, 10, 12); err != nil {
		return fmt.Errorf("entry %s: bad VLAN %q", e.MAC, e.VLAN)
	}
	if e.Port == "" {
		return fmt.Errorf("entry %s: empty port", e.MAC)
	}
	switch e.Origin {
	case Dynamic, Static:
	default:
		return fmt.Errorf("entry %s: bad origin %q", e.MAC, e.Origin)
	}
	return nil
}

// Table is a snapshot of the address table.
type Table struct {
	entries map[string]Entry
	// AgeTime is the aging period reported with the snapshot, or zero when
	// the source does not report it.
	AgeTime time.Duration
}

// NewTable builds a table from entries. Duplicate MAC addresses make the
// snapshot malformed and are rejected.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if err := t.add(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(e Entry) error {
	mac, err := ParseMAC(e.MAC)
	if err != nil {
		return err
	}
	e.MAC = mac
	if err := e.validate(); err != nil {
		return err
	}
	if prev, ok := t.entries[mac]; ok {
		return fmt.Errorf("duplicate entries for %s: [%v] and [%v]", mac, prev, e)
	}
	t.entries[mac] = e
	return nil
}

// Lookup returns the entry for mac, in any accepted spelling.
func (t *Table) Lookup(mac string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	norm, err := ParseMAC(mac)
	if err != nil {
		return Entry{}, false
	}
	e, ok := t.entries[norm]
	return e, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// MACs returns the addresses in the table, sorted.
func (t *Table) MACs() []string {
	if t == nil {
		return nil
	}
	macs := make([]string, 0, len(t.entries))
	for mac := range t.entries {
		macs = append(macs, mac)
	}
	sort.Strings(macs)
	return macs
}

// Entries returns the entries sorted by MAC.
func (t *Table) Entries() []Entry {
	var es []Entry
	for _, mac := range t.MACs() {
		es = append(es, t.entries[mac])
	}
	return es
}

// OnPort returns the entries learned or configured on port.
func (t *Table) OnPort(port string) []Entry {
	return t.filter(func(e Entry) bool { return e.Port == port })
}

// InVLAN returns the entries in vlan.
func (t *Table) InVLAN(vlan string) []Entry {
	return t.filter(func(e Entry) bool { return e.VLAN == vlan })
}

func (t *Table) filter(keep func(Entry) bool) []Entry {
	var es []Entry
	for _, e := range t.Entries() {
		if keep(e) {
			es = append(es, e)
		}
	}
	return es
}

// String renders the table the way the switch CLI prints it.
func (t *Table) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MAC Address\tVLAN\tType\tPort")
	for _, e := range t.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.MAC, e.VLAN, e.Origin, e.Port)
	}
	w.Flush()
	return b.String()
}
