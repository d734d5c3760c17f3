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

package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/openconfig/macflush/internal/dut"
	"github.com/openconfig/macflush/internal/fakeswitch"
	"github.com/openconfig/macflush/internal/host"
	"github.com/openconfig/macflush/internal/poll"
	"github.com/openconfig/macflush/internal/topo"
	"github.com/openconfig/macflush/internal/transport"
)

// Timing bounds the waits of the scenarios.
type Timing struct {
	// ConvergenceTimeout bounds every wait for the switch to reflect a change.
	// The switch database trails the hardware table by about 65s.
	ConvergenceTimeout time.Duration
	PollInterval       time.Duration
	// AgeTime is configured by the aging scenario.
	AgeTime time.Duration
	Clock   clockwork.Clock
}

// DefaultTiming suits a switch that syncs its table every 60 seconds.
var DefaultTiming = Timing{
	ConvergenceTimeout: 90 * time.Second,
	PollInterval:       2 * time.Second,
	AgeTime:            30 * time.Second,
}

func (t Timing) withDefaults() Timing {
	if t.ConvergenceTimeout <= 0 {
		t.ConvergenceTimeout = DefaultTiming.ConvergenceTimeout
	}
	if t.PollInterval <= 0 {
		t.PollInterval = DefaultTiming.PollInterval
	}
	if t.AgeTime <= 0 {
		t.AgeTime = DefaultTiming.AgeTime
	}
	if t.Clock == nil {
		t.Clock = clockwork.NewRealClock()
	}
	return t
}

// Endpoint is a host together with its addressing plan and the switch port
// it is cabled to.
type Endpoint struct {
	*host.Host
	Port string
	MAC  string
	// Addr is the interface address in CIDR form.
	Addr string
}

// IP returns the address of the endpoint without prefix length.
func (e *Endpoint) IP() string {
	ip, _, _ := strings.Cut(e.Addr, "/")
	return ip
}

// Env is everything a scenario acts on.
type Env struct {
	Switch *dut.Switch
	Hosts  map[string]*Endpoint
	Timing Timing
	// RunID identifies the run in logs and reports.
	RunID string
	// Logf receives progress and diagnostics; it defaults to glog.
	Logf func(format string, args ...any)

	closers []io.Closer
}

// NewEnv assembles an environment. Linked hosts get the addressing plan
// 00:00:00:00:00:0N and 10.0.10.N/24 in name order.
func NewEnv(t *topo.Topology, sw *dut.Switch, hosts map[string]transport.Commander, timing Timing) (*Env, error) {
	env := &Env{
		Switch: sw,
		Hosts:  map[string]*Endpoint{},
		Timing: timing.withDefaults(),
		RunID:  uuid.NewString(),
		Logf:   log.Infof,
	}
	var names []string
	for _, l := range t.Links {
		names = append(names, l.Host)
	}
	sort.Strings(names)
	for i, name := range names {
		h, err := t.Host(name)
		if err != nil {
			return nil, &SetupError{Step: "hosts", Err: err}
		}
		cli, ok := hosts[name]
		if !ok {
			return nil, &SetupError{Step: "hosts", Err: fmt.Errorf("no transport for host %s", name)}
		}
		port, err := t.PortOf(name)
		if err != nil {
			return nil, &SetupError{Step: "hosts", Err: err}
		}
		env.Hosts[name] = &Endpoint{
			Host: host.New(name, h.Interface, cli),
			Port: port,
			MAC:  fmt.Sprintf("00:00:00:00:00:%02x", i+1),
			Addr: fmt.Sprintf("10.0.%s.%d/24", VLAN, i+1),
		}
	}
	return env, nil
}

// Dial connects to the nodes of t.
func Dial(ctx context.Context, t *topo.Topology, timing Timing) (_ *Env, err error) {
	var closers []io.Closer
	defer func() {
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
		}
	}()
	connect := func(n topo.Node) (transport.Commander, error) {
		switch {
		case n.SSH != nil:
			c, err := transport.DialSSH(t.SSHOptions(n))
			if err != nil {
				return nil, &SetupError{Step: "dial " + n.Name, Err: err}
			}
			closers = append(closers, c)
			return c, nil
		case len(n.Exec) > 0:
			return &transport.Exec{Prefix: n.Exec}, nil
		}
		return nil, &SetupError{Step: "dial " + n.Name, Err: errors.New("neither ssh nor exec is configured")}
	}

	swNode, err := t.SwitchNode()
	if err != nil {
		return nil, &SetupError{Step: "switch", Err: err}
	}
	cli, err := connect(swNode.Node)
	if err != nil {
		return nil, err
	}
	var state dut.StateGetter
	if o := t.GNMIOptions(); o != nil {
		g, err := transport.DialGNMI(ctx, *o)
		if err != nil {
			return nil, &SetupError{Step: "dial gnmi " + swNode.Name, Err: err}
		}
		closers = append(closers, g)
		state = g
	}
	sw, err := dut.New(swNode.Name, cli, state, swNode.Options)
	if err != nil {
		return nil, &SetupError{Step: "switch", Err: err}
	}
	hosts := map[string]transport.Commander{}
	for _, h := range t.Hosts {
		c, err := connect(h.Node)
		if err != nil {
			return nil, err
		}
		hosts[h.Name] = c
	}
	env, err := NewEnv(t, sw, hosts, timing)
	if err != nil {
		return nil, err
	}
	env.closers = closers
	return env, nil
}

// LabTiming sizes the waits for an in-memory lab whose table trails its
// dataplane by delay. The lab converges within a few delays, so the waits
// sized for a real switch would only slow the run down.
func LabTiming(delay time.Duration) Timing {
	return Timing{
		ConvergenceTimeout: 20*delay + 2*time.Second,
		PollInterval:       delay / 4,
		AgeTime:            time.Second,
	}
}

// FromLab builds an environment over an in-memory lab. The lab shares the
// clock of timing.
func FromLab(lab *fakeswitch.Lab, t *topo.Topology, opts dut.Options, timing Timing) (*Env, error) {
	swNode, err := t.SwitchNode()
	if err != nil {
		return nil, &SetupError{Step: "switch", Err: err}
	}
	sw, err := dut.New(swNode.Name, lab.Switch(), lab.State(), opts)
	if err != nil {
		return nil, &SetupError{Step: "switch", Err: err}
	}
	hosts := map[string]transport.Commander{}
	for _, h := range t.Hosts {
		c, err := lab.Host(h.Name)
		if err != nil {
			return nil, &SetupError{Step: "hosts", Err: err}
		}
		hosts[h.Name] = c
	}
	return NewEnv(t, sw, hosts, timing)
}

// Endpoint returns the named host, or a SetupError when the topology lacks it.
func (e *Env) Endpoint(name string) (*Endpoint, error) {
	ep, ok := e.Hosts[name]
	if !ok {
		return nil, &SetupError{Step: "host " + name, Err: fmt.Errorf("host %q: %w", name, topo.ErrMissingNode)}
	}
	return ep, nil
}

// pair returns the two hosts every scenario uses.
func (e *Env) pair() (*Endpoint, *Endpoint, error) {
	hs1, err := e.Endpoint("hs1")
	if err != nil {
		return nil, nil, err
	}
	hs2, err := e.Endpoint("hs2")
	if err != nil {
		return nil, nil, err
	}
	return hs1, hs2, nil
}

// pollOpts returns wait options for condition with the convergence budget.
func (e *Env) pollOpts(condition string) poll.Opts {
	return poll.Opts{
		Condition: condition,
		Interval:  e.Timing.PollInterval,
		Timeout:   e.Timing.ConvergenceTimeout,
		Clock:     e.Timing.Clock,
	}
}

// Close releases the connections opened by Dial.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
