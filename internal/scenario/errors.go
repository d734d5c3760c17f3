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

import "fmt"

// SetupError means the topology cannot run a scenario at all, e.g. a node
// it needs is missing. The scenario is aborted.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed: %s: %v", e.Step, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// AssertionError reports an address table that still did not match after
// the convergence wait.
type AssertionError struct {
	MAC   string
	Field string
	Want  string
	Got   string
	// Cause is the *poll.TimeoutError of the wait, carrying the elapsed time
	// and the last snapshot.
	Cause error
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s is %q, want %q: %v", e.MAC, e.Field, e.Got, e.Want, e.Cause)
}

func (e *AssertionError) Unwrap() error { return e.Cause }
