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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/openconfig/macflush/internal/rundata"
	"github.com/openconfig/macflush/internal/scenario"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Report is the YAML document written by "macflush run --report".
type Report struct {
	RunID      string            `yaml:"run_id"`
	Properties map[string]string `yaml:"properties"`
	Results    []ReportResult    `yaml:"results"`
}

// ReportResult is the outcome of one scenario in a report.
type ReportResult struct {
	Scenario string `yaml:"scenario"`
	Passed   bool   `yaml:"passed"`
	Elapsed  string `yaml:"elapsed"`
	Error    string `yaml:"error,omitempty"`
	Dump     string `yaml:"dump,omitempty"`
}

// FailedError is returned when at least one scenario failed.
type FailedError struct {
	Failed, Total int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%d of %d scenarios failed", e.Failed, e.Total)
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios, all of them by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := scenario.Select(args...)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			env, top, err := a.env(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			run := rundata.New(env, top)
			results := scenario.RunAll(ctx, env, ss)
			run.Finish()
			rep := &Report{RunID: run.ID, Properties: run.Properties()}
			failed := printResults(cmd.OutOrStdout(), results)
			for _, r := range results {
				rr := ReportResult{Scenario: r.Scenario, Passed: r.Passed(), Elapsed: r.Elapsed.Round(time.Millisecond).String(), Dump: r.Dump}
				if r.Err != nil {
					rr.Error = r.Err.Error()
				}
				rep.Results = append(rep.Results, rr)
			}
			if path := a.v.GetString("report"); path != "" {
				if err := writeReport(path, rep); err != nil {
					return err
				}
			}
			// Scenarios skipped after a setup failure count as failed.
			if failed > 0 || len(results) < len(ss) {
				return &FailedError{Failed: failed + len(ss) - len(results), Total: len(ss)}
			}
			return nil
		},
	}
	cmd.Flags().String("report", "", "Write a YAML report of the run to this file.")
	a.bind(cmd.Flags())
	return cmd
}

// printResults writes one PASS or FAIL line per result and returns the
// number of failures.
func printResults(w io.Writer, results []scenario.Result) int {
	failed := 0
	for _, r := range results {
		if r.Passed() {
			fmt.Fprintf(w, "PASS %s (%v)\n", r.Scenario, r.Elapsed.Round(time.Millisecond))
			continue
		}
		failed++
		fmt.Fprintf(w, "FAIL %s (%v): %v\n", r.Scenario, r.Elapsed.Round(time.Millisecond), r.Err)
	}
	return failed
}

func writeReport(path string, rep *Report) error {
	b, err := yaml.Marshal(rep)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
