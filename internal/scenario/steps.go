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

	"github.com/openconfig/macflush/internal/fdb"
	"github.com/openconfig/macflush/internal/poll"
)

// waitLinkUp waits for port to come up.
func waitLinkUp(ctx context.Context, env *Env, port string) error {
	query := func(ctx context.Context) (bool, error) { return env.Switch.LinkUp(ctx, port) }
	res := poll.Until(ctx, env.pollOpts(fmt.Sprintf("%s:%s to come up", env.Switch.Name, port)), query, poll.Equal(true))
	return res.Err
}

// ping sends traffic from a to b so the switch learns both addresses.
func ping(ctx context.Context, env *Env, a, b *Endpoint) error {
	res, err := a.Ping(ctx, b.IP(), 3)
	if err != nil {
		return fmt.Errorf("ping %s -> %s: %w", a.Name, b.Name, err)
	}
	if !res.OK() {
		return fmt.Errorf("ping %s -> %s: %d transmitted, %d received", a.Name, b.Name, res.Transmitted, res.Received)
	}
	env.Logf("ping %s -> %s: %d/%d replies", a.Name, b.Name, res.Received, res.Transmitted)
	return nil
}

// learned is the entry a endpoint is expected to have once learned.
func learned(ep *Endpoint) fdb.Entry {
	return fdb.Entry{MAC: ep.MAC, VLAN: VLAN, Port: ep.Port, Origin: fdb.Dynamic}
}

// learn pings between the hosts and waits until both are in the table.
func learn(ctx context.Context, env *Env, hs1, hs2 *Endpoint) error {
	if err := ping(ctx, env, hs1, hs2); err != nil {
		return err
	}
	for _, ep := range []*Endpoint{hs1, hs2} {
		if err := expectEntry(ctx, env, learned(ep)); err != nil {
			return err
		}
	}
	return nil
}

// expectEntry waits until the table has want. A table that never matches is
// an AssertionError naming the first mismatched field.
func expectEntry(ctx context.Context, env *Env, want fdb.Entry) error {
	return expectEntryWithin(ctx, env, env.pollOpts(want.String()), want)
}

func expectEntryWithin(ctx context.Context, env *Env, opts poll.Opts, want fdb.Entry) error {
	res := poll.Until(ctx, opts, env.Switch.MACTable, fdb.HasEntry(want))
	if res.Status != poll.TimedOut {
		return res.Err
	}
	diffs := fdb.Mismatch(res.Last, want)
	if len(diffs) == 0 {
		return res.Err
	}
	d := diffs[0]
	return &AssertionError{MAC: want.MAC, Field: d.Field, Want: d.Want, Got: d.Got, Cause: res.Err}
}

// expectAbsent waits until pred holds. A table that never satisfies it is
// an AssertionError naming the first of macs still present.
func expectAbsent(ctx context.Context, env *Env, opts poll.Opts, pred func(*fdb.Table) bool, macs ...string) error {
	res := poll.Until(ctx, opts, env.Switch.MACTable, pred)
	if res.Status != poll.TimedOut {
		return res.Err
	}
	ae := &AssertionError{MAC: "*", Field: "entry", Want: "absent", Got: "present", Cause: res.Err}
	for _, mac := range macs {
		if e, ok := res.Last.Lookup(mac); ok {
			ae.MAC, ae.Got = mac, e.String()
			break
		}
	}
	return ae
}

// undo reverts a change a scenario made to the switch. A failing undo is
// reported only when the scenario itself passed.
func undo(err *error, revert func() error) {
	if rerr := revert(); rerr != nil && *err == nil {
		*err = fmt.Errorf("reverting: %w", rerr)
	}
}
