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

package transport

import (
	"context"
	"testing"
)

func TestExecSendCommand(t *testing.T) {
	e := &Exec{Prefix: []string{"env"}}
	got, err := e.SendCommand(context.Background(), "echo ping -c 1 'hs 2'")
	if err != nil {
		t.Fatalf("SendCommand() failed: %v", err)
	}
	if want := "ping -c 1 hs 2\n"; got != want {
		t.Errorf("SendCommand() = %q, want %q", got, want)
	}
}

func TestExecSendCommandErrors(t *testing.T) {
	e := &Exec{}
	for _, cmd := range []string{"", "false", "echo 'unterminated"} {
		if _, err := e.SendCommand(context.Background(), cmd); err == nil {
			t.Errorf("SendCommand(%q) returned no error", cmd)
		}
	}
}
