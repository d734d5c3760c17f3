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

// Predicates over a snapshot, for use with poll.Until.

// HasEntry holds when the table has an entry for want.MAC whose VLAN, port
// and origin all equal want's.
func HasEntry(want Entry) func(*Table) bool {
	return func(t *Table) bool {
		return len(Mismatch(t, want)) == 0
	}
}

// Absent holds when none of macs is in the table.
func Absent(macs ...string) func(*Table) bool {
	return func(t *Table) bool {
		for _, mac := range macs {
			if _, ok := t.Lookup(mac); ok {
				return false
			}
		}
		return true
	}
}

// AbsentOnPort holds when no entry points at port.
func AbsentOnPort(port string) func(*Table) bool {
	return func(t *Table) bool { return len(t.OnPort(port)) == 0 }
}

// AbsentInVLAN holds when no entry belongs to vlan.
func AbsentInVLAN(vlan string) func(*Table) bool {
	return func(t *Table) bool { return len(t.InVLAN(vlan)) == 0 }
}

// All holds when every predicate holds.
func All(preds ...func(*Table) bool) func(*Table) bool {
	return func(t *Table) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

// FieldDiff is one mismatched attribute of an entry.
type FieldDiff struct {
	Field string
	Want  string
	Got   string
}

// Mismatch compares the entry for want.MAC with want. A missing entry is
// reported as a single "entry" diff. Empty fields of want are not compared.
func Mismatch(t *Table, want Entry) []FieldDiff {
	got, ok := t.Lookup(want.MAC)
	if !ok {
		return []FieldDiff{{Field: "entry", Want: "present", Got: "absent"}}
	}
	var diffs []FieldDiff
	check := func(field, w, g string) {
		if w != "" && w != g {
			diffs = append(diffs, FieldDiff{Field: field, Want: w, Got: g})
		}
	}
	check("vlan", want.VLAN, got.VLAN)
	check("port", want.Port, got.Port)
	check("origin", string(want.Origin), string(got.Origin))
	return diffs
}
