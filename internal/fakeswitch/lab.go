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

// Package fakeswitch is an in-memory lab: a switch that learns, ages and
// flushes MAC addresses, and the hosts cabled to it. It answers the same
// commands as the real nodes, so the drivers in dut and host run against it
// unchanged.
//
// The address table shown by the switch CLI trails the dataplane by Delay,
// the way the switch database is synchronized from the hardware table on a
// timer. Time comes from a clockwork.Clock so tests can control it.
package fakeswitch

import (
	"fmt"
	"net/netip"
	"sort"
	"sync"
	"time"

	log "github.com/golang/glog"
	"github.com/jonboulle/clockwork"
	"github.com/openconfig/macflush/internal/fdb"
	"github.com/openconfig/macflush/internal/topo"
	"github.com/openconfig/macflush/internal/transport"
)

// DefaultAgeTime is the aging period of a switch that was never configured.
const DefaultAgeTime = 300 * time.Second

// Topology is a lab with two hosts on ports 7 and 8 of one switch.
const Topology = `
switch:
  name: ops1
  ports: ["7", "8", "9"]
hosts:
- name: hs1
- name: hs2
links:
- {host: hs1, port: "7"}
- {host: hs2, port: "8"}
`

// Options configure a lab.
type Options struct {
	Clock clockwork.Clock
	// Delay is how long dataplane changes take to show in the CLI table and
	// how long a port takes to come up.
	Delay time.Duration
}

type port struct {
	name     string
	shutdown bool
	routed   bool
	vlan     string
	// changed is when the admin state last changed.
	changed time.Time
	host    *host
}

type vlan struct {
	shutdown bool
}

type host struct {
	name  string
	iface string
	mac   string
	addr  netip.Prefix
	up    bool
	port  *port
}

type hwEntry struct {
	fdb.Entry
	lastSeen time.Time
}

type snapshot struct {
	at      time.Time
	entries map[string]hwEntry
}

// Lab is the switch and its hosts.
type Lab struct {
	name  string
	clock clockwork.Clock
	delay time.Duration

	mu      sync.Mutex
	ageTime time.Duration
	ports   map[string]*port
	vlans   map[string]*vlan
	hosts   map[string]*host
	hw      map[string]hwEntry
	history []snapshot
	faults  []error
}

// New builds a lab from a topology. Ports start shut down and routed, hosts
// start down with no address, as on a freshly booted switch.
func New(t *topo.Topology, opts Options) (*Lab, error) {
	sw, err := t.SwitchNode()
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	l := &Lab{
		name:    sw.Name,
		clock:   opts.Clock,
		delay:   opts.Delay,
		ageTime: DefaultAgeTime,
		ports:   map[string]*port{},
		vlans:   map[string]*vlan{"1": {}},
		hosts:   map[string]*host{},
		hw:      map[string]hwEntry{},
	}
	now := l.clock.Now()
	addPort := func(name string) *port {
		p, ok := l.ports[name]
		if !ok {
			p = &port{name: name, shutdown: true, routed: true, vlan: "1", changed: now}
			l.ports[name] = p
		}
		return p
	}
	for _, name := range sw.Ports {
		addPort(name)
	}
	for i, h := range t.Hosts {
		iface := h.Interface
		if iface == "" {
			iface = "eth1"
		}
		l.hosts[h.Name] = &host{
			name:  h.Name,
			iface: iface,
			mac:   fmt.Sprintf("02:00:00:00:00:%02x", i+1),
		}
	}
	for _, link := range t.Links {
		p := addPort(link.Port)
		h := l.hosts[link.Host]
		p.host, h.port = h, p
	}
	l.commit(now)
	return l, nil
}

// NewDefault builds a lab from Topology.
func NewDefault(opts Options) (*Lab, *topo.Topology, error) {
	t, err := topo.Parse([]byte(Topology))
	if err != nil {
		return nil, nil, err
	}
	l, err := New(t, opts)
	if err != nil {
		return nil, nil, err
	}
	return l, t, nil
}

// Switch returns the CLI transport of the switch.
func (l *Lab) Switch() transport.Commander { return switchCLI{l} }

// Host returns the shell transport of the named host.
func (l *Lab) Host(name string) (transport.Commander, error) {
	h, ok := l.hosts[name]
	if !ok {
		return nil, fmt.Errorf("host %q: %w", name, topo.ErrMissingNode)
	}
	return hostShell{l, h}, nil
}

// FailNext makes the next switch command fail with err.
func (l *Lab) FailNext(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults = append(l.faults, err)
}

func (l *Lab) fault() error {
	if len(l.faults) == 0 {
		return nil
	}
	err := l.faults[0]
	l.faults = l.faults[1:]
	return err
}

// Learn inserts a dynamic entry as if a frame from mac arrived on port in
// vlan, bypassing the hosts.
func (l *Lab) Learn(mac, vlan, port string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	norm, err := fdb.ParseMAC(mac)
	if err != nil {
		return err
	}
	now := l.clock.Now()
	l.learn(now, fdb.Entry{MAC: norm, VLAN: vlan, Port: port, Origin: fdb.Dynamic})
	l.commit(now)
	return nil
}

func (l *Lab) learn(now time.Time, e fdb.Entry) {
	l.expire(now)
	if prev, ok := l.hw[e.MAC]; ok && prev.Origin == fdb.Static {
		return
	}
	if prev, ok := l.hw[e.MAC]; ok && prev.Port != e.Port {
		log.V(1).Infof("%s: %s moved from port %s to %s", l.name, e.MAC, prev.Port, e.Port)
	}
	l.hw[e.MAC] = hwEntry{Entry: e, lastSeen: now}
}

// flush removes the entries matching drop.
func (l *Lab) flush(now time.Time, why string, drop func(hwEntry) bool) {
	n := 0
	for mac, e := range l.hw {
		if drop(e) {
			delete(l.hw, mac)
			n++
		}
	}
	if n > 0 {
		log.V(1).Infof("%s: flushed %d entries: %s", l.name, n, why)
	}
	l.commit(now)
}

func dynamicOnPort(p string) func(hwEntry) bool {
	return func(e hwEntry) bool { return e.Origin == fdb.Dynamic && e.Port == p }
}

func dynamicInVLAN(v string) func(hwEntry) bool {
	return func(e hwEntry) bool { return e.Origin == fdb.Dynamic && e.VLAN == v }
}

func (l *Lab) aged(e hwEntry, at time.Time) bool {
	return e.Origin == fdb.Dynamic && !e.lastSeen.Add(l.ageTime).After(at)
}

func (l *Lab) expire(now time.Time) {
	for mac, e := range l.hw {
		if l.aged(e, now) {
			delete(l.hw, mac)
		}
	}
}

// commit records the dataplane table for the CLI to catch up with.
func (l *Lab) commit(now time.Time) {
	cp := make(map[string]hwEntry, len(l.hw))
	for k, v := range l.hw {
		cp[k] = v
	}
	l.history = append(l.history, snapshot{at: now, entries: cp})
	// Keep the newest snapshot already visible and everything after it.
	cut := now.Add(-l.delay)
	i := 0
	for i+1 < len(l.history) && !l.history[i+1].at.After(cut) {
		i++
	}
	l.history = l.history[i:]
}

// table returns the entries as the CLI sees them at now.
func (l *Lab) table(now time.Time) []fdb.Entry {
	at := now.Add(-l.delay)
	var snap map[string]hwEntry
	for _, s := range l.history {
		if s.at.After(at) {
			break
		}
		snap = s.entries
	}
	var es []fdb.Entry
	for _, e := range snap {
		if !l.aged(e, at) {
			es = append(es, e.Entry)
		}
	}
	sort.Slice(es, func(i, j int) bool { return es[i].MAC < es[j].MAC })
	return es
}

// dataplane returns the hardware entries at now with their idle time.
func (l *Lab) dataplane(now time.Time) []hwEntry {
	l.expire(now)
	var es []hwEntry
	for _, e := range l.hw {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].Port != es[j].Port {
			return es[i].Port < es[j].Port
		}
		return es[i].MAC < es[j].MAC
	})
	return es
}

// forwarding reports whether port switches frames.
func (l *Lab) forwarding(p *port) bool {
	if p == nil || p.shutdown || p.routed {
		return false
	}
	v, ok := l.vlans[p.vlan]
	return ok && !v.shutdown
}

// linkUp reports the operational state of p at now.
func (l *Lab) linkUp(p *port, now time.Time) bool {
	if p.shutdown || p.host == nil || !p.host.up {
		return false
	}
	return !now.Before(p.changed.Add(l.delay))
}

// ping sends count echo requests from h to dst and returns the number of
// replies. Every request that reaches the switch teaches it the source.
func (l *Lab) ping(h *host, dst netip.Addr, count int) int {
	now := l.clock.Now()
	if !h.up || !h.addr.IsValid() || !l.linkUp(h.port, now) || !l.forwarding(h.port) {
		return 0
	}
	src := h.port
	l.learn(now, fdb.Entry{MAC: h.mac, VLAN: src.vlan, Port: src.name, Origin: fdb.Dynamic})
	defer l.commit(now)

	for _, peer := range l.hosts {
		if peer == h || !peer.up || !peer.addr.IsValid() || peer.addr.Addr() != dst {
			continue
		}
		dp := peer.port
		if !l.linkUp(dp, now) || !l.forwarding(dp) || dp.vlan != src.vlan || !h.addr.Contains(dst) {
			return 0
		}
		l.learn(now, fdb.Entry{MAC: peer.mac, VLAN: dp.vlan, Port: dp.name, Origin: fdb.Dynamic})
		return count
	}
	return 0
}
