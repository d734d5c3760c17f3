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

// Package args defines the flags of the MAC learning and flush tests. Having
// them at the project level lets the whole suite run against one topology
// without defining them per test.
package args

import (
	"flag"
	"time"
)

// Global test flags. Flags prefixed with arg_ are reported in the run data
// when set to a non-default value.
var (
	Topology           = flag.String("topology", "", "Topology file describing the switch under test and its hosts. When empty, the tests run against an in-memory lab.")
	ConvergenceTimeout = flag.Duration("arg_convergence_timeout", 90*time.Second, "Bound on every wait for the switch to reflect a change. The switch database trails the hardware table by its update period, about 65s on the reference platform.")
	PollInterval       = flag.Duration("arg_poll_interval", 2*time.Second, "Time between two reads of the address table while waiting.")
	MACAgeTime         = flag.Duration("arg_mac_age_time", 30*time.Second, "Age time configured by the aging scenario. Whole seconds only.")
	MACTableSource     = flag.String("arg_mac_table_source", "", "Where the address table is read from, \"cli\" or \"gnmi\". Overrides the topology file when set.")
	LabDelay           = flag.Duration("arg_lab_delay", 50*time.Millisecond, "How long the in-memory lab takes to show a change in its address table. The lab derives its own waits from it and ignores the other timing flags.")
)
