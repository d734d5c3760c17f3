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

package rundata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gitv5 "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/openconfig/macflush/internal/dut"
	"github.com/openconfig/macflush/internal/fakeswitch"
	"github.com/openconfig/macflush/internal/scenario"
)

var begin = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func labRun(t *testing.T, fc clockwork.Clock) *Run {
	t.Helper()
	lab, top, err := fakeswitch.NewDefault(fakeswitch.Options{})
	if err != nil {
		t.Fatalf("fakeswitch.NewDefault() failed: %v", err)
	}
	timing := scenario.Timing{ConvergenceTimeout: 3 * time.Second, PollInterval: 250 * time.Millisecond, AgeTime: time.Second}
	env, err := scenario.FromLab(lab, top, dut.Options{Source: dut.SourceGNMI}, timing)
	if err != nil {
		t.Fatalf("FromLab() failed: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return newRun(env, top, fc)
}

// subset keeps the keys of got that want names.
func subset(got, want map[string]string) map[string]string {
	m := map[string]string{}
	for k := range want {
		if v, ok := got[k]; ok {
			m[k] = v
		}
	}
	return m
}

func TestProperties(t *testing.T) {
	const wantPlanID = "MAC-1.1"
	TestPlanID = wantPlanID
	defer func() { TestPlanID = "" }()
	*knownIssueURL = "https://example.com"
	defer func() { *knownIssueURL = "" }()

	fc := clockwork.NewFakeClockAt(begin)
	r := labRun(t, fc)
	fc.Advance(90 * time.Second)
	r.Finish()
	got := r.Properties()
	t.Log(got)

	want := map[string]string{
		"run.id":                     r.ID,
		"test.plan_id":               wantPlanID,
		"known_issue_url":            "https://example.com",
		"topology":                   "hs1:1,hs2:1,ops1:3",
		"topology.switch":            "ops1",
		"topology.links":             "hs1:7,hs2:8",
		"timing.convergence_timeout": "3s",
		"timing.poll_interval":       "250ms",
		"timing.age_time":            "1s",
		"mac_table.source":           "gnmi",
		"time.begin":                 "2026-03-01T12:00:00Z",
		"time.end":                   "2026-03-01T12:01:30Z",
		"time.elapsed":               "1m30s",
	}
	if diff := cmp.Diff(want, subset(got, want)); diff != "" {
		t.Errorf("Properties() -want, +got:\n%s", diff)
	}
	if r.ID == "" {
		t.Error("run.id is empty")
	}
	if _, ok := got["build.go_version"]; !ok {
		t.Error("Missing key from Properties: build.go_version")
	}
}

func TestPropertiesUnfinished(t *testing.T) {
	fc := clockwork.NewFakeClockAt(begin)
	r := labRun(t, fc)
	fc.Advance(time.Minute)
	got := r.Properties()
	if got["time.end"] != "2026-03-01T12:01:00Z" {
		t.Errorf("time.end = %q, want the current time", got["time.end"])
	}
	if v, ok := got["time.elapsed"]; ok {
		t.Errorf("time.elapsed = %q before Finish, want none", v)
	}
}

func TestPropertiesWithoutTopology(t *testing.T) {
	r := &Run{ID: "r1", clock: clockwork.NewFakeClockAt(begin), Begin: begin}
	got := r.Properties()
	for _, k := range []string{"topology", "topology.links", "mac_table.source"} {
		if v, ok := got[k]; ok {
			t.Errorf("Properties() %s = %q, want none", k, v)
		}
	}
}

func TestCheckout(t *testing.T) {
	dir := t.TempDir()
	repo, err := gitv5.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() failed: %v", err)
	}
	const origin = "https://github.com/openconfig/macflush"
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{origin}}); err != nil {
		t.Fatalf("CreateRemote() failed: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lab.yaml"), []byte(fakeswitch.Topology), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if _, err := wt.Add("lab.yaml"); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	hash, err := wt.Commit("lab topology", &gitv5.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	got := map[string]string{}
	gitInfo(got, dir)
	want := map[string]string{
		"git.commit":      hash.String(),
		"git.branch":      "master",
		"git.commit_time": "2023-11-14T22:13:20Z",
		"git.origin":      origin,
		"git.clean":       "true",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("gitInfo() -want, +got:\n%s", diff)
	}

	if err := os.WriteFile(filepath.Join(dir, "lab.yaml"), []byte("switch: {name: ops2}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	got = map[string]string{}
	gitInfo(got, dir)
	if got["git.clean"] != "false" {
		t.Errorf("git.clean after an edit = %q, want false", got["git.clean"])
	}
}

func TestGitInfoOutsideCheckout(t *testing.T) {
	got := map[string]string{}
	gitInfo(got, t.TempDir())
	if len(got) != 0 {
		t.Errorf("gitInfo() outside a checkout = %v, want nothing", got)
	}
}
