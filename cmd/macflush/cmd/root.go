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

// Package cmd implements the macflush command line.
//
// Every flag can also be set in the file given by --config or through the
// environment, e.g. MACFLUSH_CONVERGENCE_TIMEOUT=120s.
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openconfig/macflush/internal/dut"
	"github.com/openconfig/macflush/internal/fakeswitch"
	"github.com/openconfig/macflush/internal/scenario"
	"github.com/openconfig/macflush/internal/topo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by the command.
const EnvPrefix = "MACFLUSH"

type app struct {
	v *viper.Viper
}

// New returns the root command with its subcommands.
func New() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:          "macflush",
		Short:        "Check that a switch learns and flushes MAC addresses",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (YAML) holding default flag values.")
	pf.String("topology", "", "Topology file. When empty, an in-memory lab is used.")
	pf.Duration("convergence-timeout", scenario.DefaultTiming.ConvergenceTimeout, "Bound on every wait for the switch to reflect a change.")
	pf.Duration("poll-interval", scenario.DefaultTiming.PollInterval, "Time between two reads of the address table while waiting.")
	pf.Duration("age-time", scenario.DefaultTiming.AgeTime, "Age time configured by the aging scenario.")
	pf.String("source", "", "Where the address table is read from, \"cli\" or \"gnmi\". Overrides the topology file when set.")
	pf.Duration("lab-delay", 50*time.Millisecond, "Table delay of the in-memory lab.")
	a.bind(pf)

	root.AddCommand(a.listCmd(), a.runCmd(), a.tableCmd())
	return root
}

func (a *app) bind(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		a.v.BindPFlag(f.Name, f)
	})
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return nil
}

func (a *app) timing() scenario.Timing {
	return scenario.Timing{
		ConvergenceTimeout: a.v.GetDuration("convergence-timeout"),
		PollInterval:       a.v.GetDuration("poll-interval"),
		AgeTime:            a.v.GetDuration("age-time"),
	}
}

func (a *app) switchOptions(opts dut.Options) dut.Options {
	if src := a.v.GetString("source"); src != "" {
		opts.Source = dut.Source(src)
	}
	return opts
}

// env connects to the topology, or builds the in-memory lab when no
// topology is configured.
func (a *app) env(ctx context.Context) (*scenario.Env, *topo.Topology, error) {
	path := a.v.GetString("topology")
	if path == "" {
		delay := a.v.GetDuration("lab-delay")
		lab, top, err := fakeswitch.NewDefault(fakeswitch.Options{Delay: delay})
		if err != nil {
			return nil, nil, err
		}
		env, err := scenario.FromLab(lab, top, a.switchOptions(dut.Options{}), scenario.LabTiming(delay))
		return env, top, err
	}
	top, err := topo.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if sw, err := top.SwitchNode(); err == nil {
		sw.Options = a.switchOptions(sw.Options)
	}
	env, err := scenario.Dial(ctx, top, a.timing())
	return env, top, err
}
