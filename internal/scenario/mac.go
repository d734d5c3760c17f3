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
	"fmt"

	"github.com/openconfig/macflush/internal/dut"
	"github.com/openconfig/macflush/internal/fdb"
)

func init() {
	register(Scenario{
		Name:        "learn",
		Description: "addresses are learned dynamically on the ports and VLAN they were seen on",
		Run:         learnScenario,
	})
	register(Scenario{
		Name:        "link-down",
		Description: "shutting a port flushes the addresses learned on it",
		Run: flushScenario(func(ctx context.Context, env *Env, eps []*Endpoint) error {
			for _, ep := range eps {
				if err := env.Switch.ConfigInterface(ctx, ep.Port, func(ic *dut.InterfaceConfig) error {
					ic.Shutdown(true)
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		}, portsFlushed),
	})
	register(Scenario{
		Name:        "carrier-loss",
		Description: "a host taking its link down flushes the address learned from it",
		Run: flushScenario(func(ctx context.Context, env *Env, eps []*Endpoint) error {
			return eps[0].Down(ctx)
		}, func(ctx context.Context, env *Env, eps []*Endpoint) error {
			if err := portsFlushed(ctx, env, eps[:1]); err != nil {
				return err
			}
			return expectEntry(ctx, env, learned(eps[1]))
		}),
	})
	register(Scenario{
		Name:        "routing-mode",
		Description: "moving a port to routed mode flushes the addresses learned on it",
		Run: flushScenario(func(ctx context.Context, env *Env, eps []*Endpoint) error {
			for _, ep := range eps {
				if err := env.Switch.ConfigInterface(ctx, ep.Port, func(ic *dut.InterfaceConfig) error {
					ic.Routing(true)
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		}, portsFlushed),
	})
	register(Scenario{
		Name:        "vlan-shutdown",
		Description: "shutting a VLAN flushes the addresses learned in it",
		Run: flushScenario(func(ctx context.Context, env *Env, _ []*Endpoint) error {
			return env.Switch.ConfigVLAN(ctx, VLAN, func(vc *dut.VLANConfig) error {
				vc.Shutdown(true)
				return nil
			})
		}, vlanFlushed),
	})
	register(Scenario{
		Name:        "vlan-delete",
		Description: "deleting a VLAN flushes the addresses learned in it",
		Run: flushScenario(func(ctx context.Context, env *Env, _ []*Endpoint) error {
			return env.Switch.DeleteVLAN(ctx, VLAN)
		}, vlanFlushed),
	})
	register(Scenario{
		Name:        "move",
		Description: "an address seen on another port moves there without a stale entry",
		Run:         moveScenario,
	})
	register(Scenario{
		Name:        "static",
		Description: "a configured address is reported as static",
		Run:         staticScenario,
	})
	register(Scenario{
		Name:        "aging",
		Description: "an idle learned address ages out after the configured age time",
		Run:         agingScenario,
	})
}

func learnScenario(ctx context.Context, env *Env) error {
	hs1, hs2, err := env.pair()
	if err != nil {
		return err
	}
	return learn(ctx, env, hs1, hs2)
}

// flushCheck waits for the flush that follows an action on eps.
type flushCheck func(ctx context.Context, env *Env, eps []*Endpoint) error

func portsFlushed(ctx context.Context, env *Env, eps []*Endpoint) error {
	for _, ep := range eps {
		opts := env.pollOpts(fmt.Sprintf("no address on %s:%s", env.Switch.Name, ep.Port))
		if err := expectAbsent(ctx, env, opts, fdb.All(fdb.Absent(ep.MAC), fdb.AbsentOnPort(ep.Port)), ep.MAC); err != nil {
			return err
		}
	}
	return nil
}

func vlanFlushed(ctx context.Context, env *Env, eps []*Endpoint) error {
	var macs []string
	for _, ep := range eps {
		macs = append(macs, ep.MAC)
	}
	opts := env.pollOpts(fmt.Sprintf("no address in vlan %s", VLAN))
	return expectAbsent(ctx, env, opts, fdb.AbsentInVLAN(VLAN), macs...)
}

// flushScenario learns both hosts, applies act and waits for check.
func flushScenario(act func(ctx context.Context, env *Env, eps []*Endpoint) error, check flushCheck) func(context.Context, *Env) error {
	return func(ctx context.Context, env *Env) error {
		hs1, hs2, err := env.pair()
		if err != nil {
			return err
		}
		if err := learn(ctx, env, hs1, hs2); err != nil {
			return err
		}
		eps := []*Endpoint{hs1, hs2}
		if err := act(ctx, env, eps); err != nil {
			return err
		}
		return check(ctx, env, eps)
	}
}

func moveScenario(ctx context.Context, env *Env) error {
	hs1, hs2, err := env.pair()
	if err != nil {
		return err
	}
	if err := learn(ctx, env, hs1, hs2); err != nil {
		return err
	}
	// The hosts swap addresses, so no frame from the old location can move
	// an entry back, then each one broadcasts from its new address.
	moves := []struct {
		ep  *Endpoint
		mac string
	}{{hs1, hs2.MAC}, {hs2, hs1.MAC}}
	for _, m := range moves {
		if err := m.ep.SetMAC(ctx, m.mac); err != nil {
			return err
		}
	}
	for _, m := range moves {
		got, err := m.ep.Host.MAC(ctx)
		if err != nil {
			return err
		}
		if got != m.mac {
			return &SetupError{Step: "move", Err: fmt.Errorf("%s reports address %s after setting %s", m.ep.Name, got, m.mac)}
		}
		if _, err := m.ep.Ping(ctx, AbsentPeer, 1); err != nil {
			return fmt.Errorf("ping %s -> %s: %w", m.ep.Name, AbsentPeer, err)
		}
	}
	// A duplicate entry for either address would fail every table query.
	for _, m := range moves {
		if err := expectEntry(ctx, env, fdb.Entry{MAC: m.mac, VLAN: VLAN, Port: m.ep.Port, Origin: fdb.Dynamic}); err != nil {
			return err
		}
	}
	return nil
}

func staticScenario(ctx context.Context, env *Env) (err error) {
	hs1, _, err := env.pair()
	if err != nil {
		return err
	}
	want := fdb.Entry{MAC: StaticMAC, VLAN: VLAN, Port: hs1.Port, Origin: fdb.Static}
	if err := env.Switch.AddStaticMAC(ctx, want); err != nil {
		return err
	}
	defer undo(&err, func() error { return env.Switch.RemoveStaticMAC(ctx, want) })
	return expectEntry(ctx, env, want)
}

func agingScenario(ctx context.Context, env *Env) (err error) {
	hs1, hs2, err := env.pair()
	if err != nil {
		return err
	}
	if err := env.Switch.SetAgeTime(ctx, env.Timing.AgeTime); err != nil {
		return err
	}
	defer undo(&err, func() error { return env.Switch.SetAgeTime(ctx, DefaultAgeTime) })
	if err := learn(ctx, env, hs1, hs2); err != nil {
		return err
	}
	opts := env.pollOpts(fmt.Sprintf("%s and %s to age out", hs1.MAC, hs2.MAC))
	opts.Timeout += env.Timing.AgeTime
	return expectAbsent(ctx, env, opts, fdb.Absent(hs1.MAC, hs2.MAC), hs1.MAC, hs2.MAC)
}
