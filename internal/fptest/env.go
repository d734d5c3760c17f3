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

package fptest

import (
	"context"
	"testing"

	log "github.com/golang/glog"
	"github.com/openconfig/macflush/internal/args"
	"github.com/openconfig/macflush/internal/dut"
	"github.com/openconfig/macflush/internal/fakeswitch"
	"github.com/openconfig/macflush/internal/rundata"
	"github.com/openconfig/macflush/internal/scenario"
	"github.com/openconfig/macflush/internal/topo"
)

// Timing returns the scenario timing set by the flags.
func Timing() scenario.Timing {
	return scenario.Timing{
		ConvergenceTimeout: *args.ConvergenceTimeout,
		PollInterval:       *args.PollInterval,
		AgeTime:            *args.MACAgeTime,
	}
}

// NewEnv returns the environment of the topology given by -topology, or of
// an in-memory lab when the flag is empty. Setup failures are fatal. The
// environment is closed when the test ends.
func NewEnv(t testing.TB) *scenario.Env {
	t.Helper()
	var (
		env *scenario.Env
		top *topo.Topology
		err error
	)
	if *args.Topology == "" {
		env, top, err = labEnv()
	} else {
		env, top, err = dialEnv(context.Background(), *args.Topology)
	}
	if err != nil {
		t.Fatalf("Cannot set up the topology: %v", err)
	}
	env.Logf = t.Logf
	t.Cleanup(func() {
		if err := env.Close(); err != nil {
			t.Errorf("Closing the topology: %v", err)
		}
	})
	for k, v := range rundata.New(env, top).Properties() {
		log.V(1).Infof("rundata %s=%s", k, v)
	}
	t.Logf("Run %s on %s", env.RunID, top.Summary())
	return env
}

func switchOptions(opts dut.Options) dut.Options {
	if *args.MACTableSource != "" {
		opts.Source = dut.Source(*args.MACTableSource)
	}
	return opts
}

func labEnv() (*scenario.Env, *topo.Topology, error) {
	lab, top, err := fakeswitch.NewDefault(fakeswitch.Options{Delay: *args.LabDelay})
	if err != nil {
		return nil, nil, err
	}
	env, err := scenario.FromLab(lab, top, switchOptions(dut.Options{}), scenario.LabTiming(*args.LabDelay))
	return env, top, err
}

func dialEnv(ctx context.Context, path string) (*scenario.Env, *topo.Topology, error) {
	top, err := topo.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if sw, err := top.SwitchNode(); err == nil {
		sw.Options = switchOptions(sw.Options)
	}
	env, err := scenario.Dial(ctx, top, Timing())
	return env, top, err
}
