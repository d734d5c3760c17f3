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

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/openconfig/macflush/internal/scenario"
	"gopkg.in/yaml.v3"
)

// execute runs the command line args against a fresh root command.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := New()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, s := range scenario.All() {
		if !strings.Contains(out, s.Name) {
			t.Errorf("list output lacks scenario %q:\n%s", s.Name, out)
		}
	}
}

func TestRunWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")

	out, err := execute(t, "run", "learn", "--lab-delay", "5ms", "--report", path)
	if err != nil {
		t.Fatalf("run learn failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "PASS learn") {
		t.Errorf("run output = %q, want PASS learn", out)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var rep Report
	if err := yaml.Unmarshal(b, &rep); err != nil {
		t.Fatalf("report is not YAML: %v", err)
	}
	if rep.RunID == "" {
		t.Error("report has no run id")
	}
	if got, want := rep.Properties["topology"], "hs1:1,hs2:1,ops1:3"; got != want {
		t.Errorf("report topology = %q, want %q", got, want)
	}
	var names []string
	for _, r := range rep.Results {
		names = append(names, r.Scenario)
		if !r.Passed || r.Error != "" {
			t.Errorf("report result %+v, want passed", r)
		}
	}
	if diff := cmp.Diff([]string{"learn"}, names); diff != "" {
		t.Errorf("report scenarios -want +got:\n%s", diff)
	}
}

func TestRunUnknownScenario(t *testing.T) {
	_, err := execute(t, "run", "no-such-scenario")
	if err == nil || !strings.Contains(err.Error(), "no-such-scenario") {
		t.Errorf("run no-such-scenario error = %v, want unknown scenario", err)
	}
}

func TestTable(t *testing.T) {
	out, err := execute(t, "table", "--lab-delay", "5ms", "--dump")
	if err != nil {
		t.Fatalf("table failed: %v", err)
	}
	if !strings.Contains(out, "MAC Address") {
		t.Errorf("table output lacks the table header:\n%s", out)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macflush.yaml")
	if err := os.WriteFile(path, []byte("source: bogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "table", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("table with source from config error = %v, want unknown source", err)
	}
}

func TestEnvironment(t *testing.T) {
	t.Setenv("MACFLUSH_SOURCE", "bogus")
	_, err := execute(t, "table")
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("table with MACFLUSH_SOURCE error = %v, want unknown source", err)
	}
}

func TestPrintResults(t *testing.T) {
	var b bytes.Buffer
	failed := printResults(&b, []scenario.Result{
		{Scenario: "learn", Elapsed: 1500 * time.Millisecond},
		{Scenario: "aging", Elapsed: 2 * time.Second, Err: errors.New("timed out")},
	})
	if failed != 1 {
		t.Errorf("printResults() = %d failures, want 1", failed)
	}
	want := "PASS learn (1.5s)\nFAIL aging (2s): timed out\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("printResults() -want +got:\n%s", diff)
	}
}
