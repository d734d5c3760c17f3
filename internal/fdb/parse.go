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

package fdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openconfig/macflush/internal/textfsm"
	"github.com/tidwall/gjson"
)

// ParseCLI parses the output of "show mac-address-table".
func ParseCLI(out string) (*Table, error) {
	p := &textfsm.ShowMacAddressTable{}
	if err := p.Parse(out); err != nil {
		return nil, fmt.Errorf("parsing mac-address-table output: %w", err)
	}
	t := &Table{entries: make(map[string]Entry, len(p.Rows))}
	for _, row := range p.Rows {
		origin, err := ParseOrigin(row.Type)
		if err != nil {
			return nil, err
		}
		if err := t.add(Entry{MAC: row.MacAddress, VLAN: row.VlanId, Port: row.Port, Origin: origin}); err != nil {
			return nil, err
		}
		if row.AgeTime != "" && t.AgeTime == 0 {
			secs, err := strconv.Atoi(row.AgeTime)
			if err != nil {
				return nil, fmt.Errorf("bad age-time %q: %w", row.AgeTime, err)
			}
			t.AgeTime = time.Duration(secs) * time.Second
		}
	}
	if len(p.Rows) > 0 && p.Rows[0].Count != "" {
		n, err := strconv.Atoi(p.Rows[0].Count)
		if err != nil {
			return nil, fmt.Errorf("bad address count %q: %w", p.Rows[0].Count, err)
		}
		if n != t.Len() {
			return nil, fmt.Errorf("switch reports %d MAC addresses but lists %d", n, t.Len())
		}
	}
	return t, nil
}

// ParseGNMI parses the JSON_IETF value of the OpenConfig path
// /network-instances/network-instance/fdb/mac-table/entries.
//
// The entry list may be keyed with or without its module prefix, and each
// field is read from state with a fallback to the list key.
func ParseGNMI(val []byte) (*Table, error) {
	if !gjson.ValidBytes(val) {
		return nil, fmt.Errorf("mac-table payload is not valid JSON: %.80q", val)
	}
	var list gjson.Result
	gjson.ParseBytes(val).ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if i := strings.LastIndexByte(name, ':'); i >= 0 {
			name = name[i+1:]
		}
		if name == "entry" && v.IsArray() {
			list = v
			return false
		}
		return true
	})
	t := &Table{entries: map[string]Entry{}}
	if !list.Exists() {
		return t, nil
	}
	var err error
	list.ForEach(func(_, e gjson.Result) bool {
		var origin Origin
		if origin, err = ParseOrigin(firstOf(e, "state.entry-type", "entry-type")); err != nil {
			return false
		}
		err = t.add(Entry{
			MAC:    firstOf(e, "state.mac-address", "mac-address"),
			VLAN:   firstOf(e, "state.vlan", "vlan"),
			Port:   firstOf(e, "interface.interface-ref.state.interface", "interface.interface-ref.config.interface"),
			Origin: origin,
		})
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing mac-table entries: %w", err)
	}
	return t, nil
}

func firstOf(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// DumpEntry is one row of the dataplane's own learned-address dump. The dump
// is logged for diagnosis and never asserted on.
type DumpEntry struct {
	Port string
	VLAN string
	MAC  string
	Age  string
}

// ParseDump parses "ovs-appctl fdb/show" style output.
func ParseDump(out string) ([]DumpEntry, error) {
	p := &textfsm.FdbShow{}
	if err := p.Parse(out); err != nil {
		return nil, fmt.Errorf("parsing dataplane dump: %w", err)
	}
	var es []DumpEntry
	for _, row := range p.Rows {
		es = append(es, DumpEntry{Port: row.Port, VLAN: row.Vlan, MAC: strings.ToLower(row.Mac), Age: row.Age})
	}
	return es, nil
}
