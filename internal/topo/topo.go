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

// Package topo loads the description of a test topology: one switch under
// test, the hosts cabled to it and how to reach each of them.
//
// A topology file looks like:
//
//	options:
//	  username: admin
//	  password: admin
//	switch:
//	  name: sw1
//	  ssh: {target: 192.0.2.1}
//	  ports: ["7", "8"]
//	hosts:
//	- name: hs1
//	  exec: [ip, netns, exec, hs1]
//	- name: hs2
//	  exec: [ip, netns, exec, hs2]
//	links:
//	- {host: hs1, port: "7"}
//	- {host: hs2, port: "8"}
package topo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/openconfig/macflush/internal/dut"
	"github.com/openconfig/macflush/internal/transport"
	"gopkg.in/yaml.v3"
)

// ErrMissingNode is returned when a node a test needs is not in the topology.
var ErrMissingNode = errors.New("node missing from topology")

// Node is how to reach one machine of the topology. At most one of SSH and
// Exec is set; a node with neither can only be emulated.
type Node struct {
	Name string             `yaml:"name"`
	SSH  *transport.Options `yaml:"ssh,omitempty"`
	Exec []string           `yaml:"exec,omitempty"`
}

// Switch is the switch under test.
type Switch struct {
	Node        `yaml:",inline"`
	dut.Options `yaml:",inline"`
	GNMI        *transport.Options `yaml:"gnmi,omitempty"`
	Ports       []string           `yaml:"ports,omitempty"`
}

// Host is an emulated endpoint.
type Host struct {
	Node      `yaml:",inline"`
	Interface string `yaml:"interface,omitempty"`
}

// Link cables a host to a switch port.
type Link struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Topology is a parsed topology file.
type Topology struct {
	// Options are connection defaults merged under every node's own.
	Options *transport.Options `yaml:"options,omitempty"`
	Switch  *Switch            `yaml:"switch,omitempty"`
	Hosts   []*Host            `yaml:"hosts,omitempty"`
	Links   []Link             `yaml:"links,omitempty"`
}

// Load reads and validates a topology file.
func Load(path string) (*Topology, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a topology. Unknown keys are errors.
func Parse(b []byte) (*Topology, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	t := &Topology{}
	if err := dec.Decode(t); err != nil {
		return nil, fmt.Errorf("decoding topology: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Topology) validate() error {
	names := map[string]bool{}
	checkNode := func(kind string, n Node) error {
		if n.Name == "" {
			return fmt.Errorf("%s without a name", kind)
		}
		if names[n.Name] {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		names[n.Name] = true
		if n.SSH != nil && len(n.Exec) > 0 {
			return fmt.Errorf("node %s: both ssh and exec are set", n.Name)
		}
		return nil
	}
	if t.Switch != nil {
		if err := checkNode("switch", t.Switch.Node); err != nil {
			return err
		}
	}
	hosts := map[string]bool{}
	for _, h := range t.Hosts {
		if err := checkNode("host", h.Node); err != nil {
			return err
		}
		hosts[h.Name] = true
	}
	linked := map[string]bool{}
	ports := map[string]string{}
	for _, l := range t.Links {
		if !hosts[l.Host] {
			return fmt.Errorf("link to unknown host %q", l.Host)
		}
		if l.Port == "" {
			return fmt.Errorf("link from %s has no switch port", l.Host)
		}
		if linked[l.Host] {
			return fmt.Errorf("host %s is linked more than once", l.Host)
		}
		if prev, ok := ports[l.Port]; ok {
			return fmt.Errorf("switch port %s is cabled to both %s and %s", l.Port, prev, l.Host)
		}
		if t.Switch != nil && len(t.Switch.Ports) > 0 && !contains(t.Switch.Ports, l.Port) {
			return fmt.Errorf("link from %s to port %s which %s does not list", l.Host, l.Port, t.Switch.Name)
		}
		linked[l.Host] = true
		ports[l.Port] = l.Host
	}
	return nil
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// SwitchNode returns the switch, or ErrMissingNode.
func (t *Topology) SwitchNode() (*Switch, error) {
	if t.Switch == nil {
		return nil, fmt.Errorf("switch: %w", ErrMissingNode)
	}
	return t.Switch, nil
}

// Host returns the named host, or ErrMissingNode.
func (t *Topology) Host(name string) (*Host, error) {
	for _, h := range t.Hosts {
		if h.Name == name {
			return h, nil
		}
	}
	return nil, fmt.Errorf("host %q: %w", name, ErrMissingNode)
}

// PortOf returns the switch port the named host is cabled to.
func (t *Topology) PortOf(host string) (string, error) {
	for _, l := range t.Links {
		if l.Host == host {
			return l.Port, nil
		}
	}
	return "", fmt.Errorf("link of host %q: %w", host, ErrMissingNode)
}

// SSHOptions returns the SSH options of n merged over the defaults.
func (t *Topology) SSHOptions(n Node) transport.Options {
	return transport.Merge(t.Options, n.SSH)
}

// GNMIOptions returns the gNMI options of the switch merged over the
// defaults, or nil when the switch has none.
func (t *Topology) GNMIOptions() *transport.Options {
	if t.Switch == nil || t.Switch.GNMI == nil {
		return nil
	}
	o := transport.Merge(t.Options, t.Switch.GNMI)
	return &o
}

// Summary lists the nodes and the number of ports each provides, ordered by
// name, e.g. "hs1:1,hs2:1,sw1:2".
func (t *Topology) Summary() string {
	top := map[string]int{}
	if t.Switch != nil {
		n := len(t.Switch.Ports)
		if n == 0 {
			n = len(t.Links)
		}
		top[t.Switch.Name] = n
	}
	for _, h := range t.Hosts {
		top[h.Name] = 0
	}
	for _, l := range t.Links {
		top[l.Host]++
	}
	var keys []string
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, top[k]))
	}
	return strings.Join(parts, ",")
}
