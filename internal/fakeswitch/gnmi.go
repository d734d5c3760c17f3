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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/openconfig/macflush/internal/dut"
)

type stateGetter struct {
	l *Lab
}

// State returns a gNMI stand-in serving the address table at
// dut.MACTablePath in JSON_IETF form.
func (l *Lab) State() dut.StateGetter { return stateGetter{l} }

type ocEntry struct {
	MACAddress string  `json:"mac-address"`
	VLAN       int     `json:"vlan"`
	State      ocState `json:"state"`
	Interface  struct {
		InterfaceRef struct {
			State struct {
				Interface string `json:"interface"`
			} `json:"state"`
		} `json:"interface-ref"`
	} `json:"interface"`
}

type ocState struct {
	MACAddress string `json:"mac-address"`
	VLAN       int    `json:"vlan"`
	EntryType  string `json:"entry-type"`
}

func (g stateGetter) GetJSON(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := g.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(); err != nil {
		return nil, err
	}
	if path != dut.MACTablePath {
		return nil, fmt.Errorf("rpc error: code = NotFound desc = path %q not supported", path)
	}
	entries := []ocEntry{}
	for _, e := range l.table(l.clock.Now()) {
		vlan, err := strconv.Atoi(e.VLAN)
		if err != nil {
			return nil, err
		}
		oc := ocEntry{
			MACAddress: e.MAC,
			VLAN:       vlan,
			State: ocState{
				MACAddress: e.MAC,
				VLAN:       vlan,
				EntryType:  strings.ToUpper(string(e.Origin)),
			},
		}
		oc.Interface.InterfaceRef.State.Interface = e.Port
		entries = append(entries, oc)
	}
	return json.Marshal(map[string]any{"openconfig-network-instance:entry": entries})
}
