// Copyright 2022 Google LLC
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

// Package rundata collects the properties a scenario run reports next to
// its results.
//
// The values collected are:
//
//   - run.id - the id the run logs under, see scenario.Env.RunID.
//   - topology - a summary of the topology formatted as a comma separated list of the
//     nodes and the number of ports they provide, ordered by name, e.g.
//     "hs1:1,hs2:1,ops1:2" - two hosts cabled to one switch.
//   - topology.switch - the name of the switch under test.
//   - topology.links - host:port for every cabled host, ordered by host.
//   - timing.convergence_timeout, timing.poll_interval, timing.age_time - the
//     waits the scenarios ran with.
//   - mac_table.source - where the address table was read from, cli or gnmi.
//   - time.begin and time.end - the run interval, RFC 3339 in UTC.
//   - time.elapsed - the length of the run, once it is finished.
//   - test.plan_id - test plan ID that is optionally reported by the test. See below.
//   - known_issue_url - the -known_issue_url flag, when set.
//   - build.go_version, build.module - the toolchain and the module version of the binary.
//   - build.vcs.revision, build.vcs.modified - stamped by the go command when built
//     from a checkout.
//   - git.commit, git.branch, git.commit_time, git.origin, git.clean - the checkout
//     the run started from, when there is one.
package rundata

import (
	"flag"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/openconfig/macflush/internal/scenario"
	"github.com/openconfig/macflush/internal/topo"
)

// TestPlanID can be set by a test to optionally self-report the test
// plan ID.
var TestPlanID string

var (
	knownIssueURL = flag.String("known_issue_url", "", "Report a known issue that explains why the test fails.  This should be a URL to the issue tracker.")
)

// Run is one run of scenarios against a topology.
type Run struct {
	ID       string
	Topology *topo.Topology
	Timing   scenario.Timing
	Source   string
	Begin    time.Time
	End      time.Time

	clock clockwork.Clock
}

// New starts recording a run over env, which was set up from top.
func New(env *scenario.Env, top *topo.Topology) *Run {
	return newRun(env, top, clockwork.NewRealClock())
}

func newRun(env *scenario.Env, top *topo.Topology, clock clockwork.Clock) *Run {
	r := &Run{
		ID:       env.RunID,
		Topology: top,
		Timing:   env.Timing,
		Begin:    clock.Now(),
		clock:    clock,
	}
	if env.Switch != nil {
		r.Source = string(env.Switch.Options().Source)
	}
	return r
}

// Finish marks the end of the run.
func (r *Run) Finish() {
	r.End = r.clock.Now()
}

// Properties builds the property map of the run. An unfinished run reports
// the current time as its end.
func (r *Run) Properties() map[string]string {
	m := map[string]string{"run.id": r.ID}
	if TestPlanID != "" {
		m["test.plan_id"] = TestPlanID
	}
	if *knownIssueURL != "" {
		m["known_issue_url"] = *knownIssueURL
	}
	if r.Topology != nil {
		topology(m, r.Topology)
	}
	m["timing.convergence_timeout"] = r.Timing.ConvergenceTimeout.String()
	m["timing.poll_interval"] = r.Timing.PollInterval.String()
	m["timing.age_time"] = r.Timing.AgeTime.String()
	if r.Source != "" {
		m["mac_table.source"] = r.Source
	}

	end := r.End
	if end.IsZero() {
		end = r.clock.Now()
	} else {
		m["time.elapsed"] = r.End.Sub(r.Begin).String()
	}
	m["time.begin"] = r.Begin.UTC().Format(time.RFC3339)
	m["time.end"] = end.UTC().Format(time.RFC3339)

	buildInfo(m)
	if wd, err := os.Getwd(); err == nil {
		gitInfo(m, wd)
	}
	return m
}

func topology(m map[string]string, t *topo.Topology) {
	m["topology"] = t.Summary()
	if t.Switch != nil {
		m["topology.switch"] = t.Switch.Name
	}
	var links []string
	for _, l := range t.Links {
		links = append(links, l.Host+":"+l.Port)
	}
	sort.Strings(links)
	m["topology.links"] = strings.Join(links, ",")
}
