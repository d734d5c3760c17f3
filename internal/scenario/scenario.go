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

// Package scenario holds the end-to-end MAC learning and flush scenarios.
//
// Every scenario follows the same sequence: configure the switch, act on it
// or on the hosts, wait for the switch to converge, fetch the address table
// and assert on it. Waits never sleep a fixed time; they poll the table with
// the bounds in Env.Timing.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openconfig/macflush/internal/dut"
	"github.com/openconfig/macflush/internal/fakeswitch"
)

const (
	// VLAN is the access VLAN of the host ports.
	VLAN = "10"
	// StaticMAC is the address the static scenario configures.
	StaticMAC = "00:00:00:00:aa:bb"
	// AbsentPeer is an address in the host subnet that nobody answers.
	AbsentPeer = "10.0.10.254"
	// DefaultAgeTime is restored once the aging scenario is done.
	DefaultAgeTime = fakeswitch.DefaultAgeTime
)

// Scenario is one named end-to-end check.
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, env *Env) error
}

var registry []Scenario

// register adds s to the scenarios run by default, in registration order.
func register(s Scenario) {
	if _, ok := Lookup(s.Name); ok {
		panic(fmt.Sprintf("scenario %q registered twice", s.Name))
	}
	registry = append(registry, s)
}

// All returns the registered scenarios in run order.
func All() []Scenario {
	return append([]Scenario(nil), registry...)
}

// Lookup returns the scenario called name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Select returns the named scenarios, or all of them when names is empty.
func Select(names ...string) ([]Scenario, error) {
	if len(names) == 0 {
		return All(), nil
	}
	var ss []Scenario
	for _, n := range names {
		s, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", n)
		}
		ss = append(ss, s)
	}
	return ss, nil
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario string
	Err      error
	Elapsed  time.Duration
	// Dump is the dataplane dump taken when the scenario failed.
	Dump string
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Run resets the environment to its baseline and runs s. On failure the
// address table and the dataplane dump are logged for diagnosis.
func Run(ctx context.Context, env *Env, s Scenario) Result {
	start := env.Timing.Clock.Now()
	env.Logf("[%s] scenario %s: %s", env.RunID, s.Name, s.Description)
	err := Reset(ctx, env)
	if err == nil {
		err = s.Run(ctx, env)
	}
	res := Result{Scenario: s.Name, Err: err, Elapsed: env.Timing.Clock.Since(start)}
	if err == nil {
		env.Logf("[%s] scenario %s passed in %v", env.RunID, s.Name, res.Elapsed)
		return res
	}
	env.Logf("[%s] scenario %s failed: %v", env.RunID, s.Name, err)
	var setup *SetupError
	if errors.As(err, &setup) {
		return res
	}
	if tbl, terr := env.Switch.MACTable(ctx); terr == nil {
		env.Logf("address table of %s:\n%s", env.Switch.Name, tbl)
	}
	dump, derr := env.Switch.DataplaneDump(ctx)
	if derr != nil {
		env.Logf("dataplane dump of %s failed: %v", env.Switch.Name, derr)
		return res
	}
	env.Logf("dataplane of %s:\n%s", env.Switch.Name, dump)
	res.Dump = dump
	return res
}

// RunAll runs ss in order and restores the baseline afterwards. A setup
// failure stops the run since every later scenario would fail the same way.
func RunAll(ctx context.Context, env *Env, ss []Scenario) []Result {
	var results []Result
	for _, s := range ss {
		res := Run(ctx, env, s)
		results = append(results, res)
		var setup *SetupError
		if errors.As(res.Err, &setup) || ctx.Err() != nil {
			return results
		}
	}
	if err := Reset(ctx, env); err != nil {
		env.Logf("restoring baseline after the run failed: %v", err)
	}
	return results
}

// Reset puts the switch and the hosts back to the baseline: VLAN up with
// both host ports switched in it, hosts on their addressing plan and all
// links up. Only VLAN and interface state is configured, so the baseline
// holds on switches without configurable aging or static entries.
func Reset(ctx context.Context, env *Env) error {
	hs1, hs2, err := env.pair()
	if err != nil {
		return err
	}
	eps := []*Endpoint{hs1, hs2}
	err = env.Switch.Configure(ctx, func(c *dut.Config) error {
		if err := c.VLAN(VLAN, func(vc *dut.VLANConfig) error {
			vc.Shutdown(false)
			return nil
		}); err != nil {
			return err
		}
		for _, ep := range eps {
			if err := c.Interface(ep.Port, func(ic *dut.InterfaceConfig) error {
				ic.Routing(false)
				ic.Shutdown(false)
				ic.AccessVLAN(VLAN)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	for _, ep := range eps {
		if err := ep.SetMAC(ctx, ep.MAC); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		if err := ep.SetIP(ctx, ep.Addr); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		if err := ep.Up(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	for _, ep := range eps {
		if err := waitLinkUp(ctx, env, ep.Port); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}
