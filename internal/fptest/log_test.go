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

package fptest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name, want string
	}{
		{"TestMACFlush/vlan-shutdown", "TestMACFlush_vlan-shutdown"},
		{"TestMACFlush/move (swap)", "TestMACFlush_move_(swap)"},
		{"00:00:00:00:aa:bb vlan=10", "00:00:00:00:aa:bb_vlan=10"},
		{"hs1?*!port#7", "hs1port7"},
	}
	for _, c := range cases {
		if got := sanitizeFilename(c.name); got != c.want {
			t.Errorf("sanitizeFilename(%q) got %q, want %q", c.name, got, c.want)
		}
	}
}

func setOutputsDir(t *testing.T, dir string) {
	t.Helper()
	old := *outputsDir
	*outputsDir = dir
	t.Cleanup(func() { *outputsDir = old })
}

func TestOutputDir(t *testing.T) {
	env := t.TempDir()
	t.Setenv("TEST_UNDECLARED_OUTPUTS_DIR", env)

	setOutputsDir(t, "")
	if got := outputDir(); got != env {
		t.Errorf("outputDir() without -outputs_dir = %q, want %q", got, env)
	}
	flagDir := t.TempDir()
	setOutputsDir(t, flagDir)
	if got := outputDir(); got != flagDir {
		t.Errorf("outputDir() with -outputs_dir = %q, want %q", got, flagDir)
	}
}

func TestWriteOutputDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	setOutputsDir(t, dir)
	const dump = "Vlan  Mac Address        Type     Ports\n10    00:00:00:00:00:01  DYNAMIC  7\n"

	path, err := WriteOutput("TestMACFlush/link-down", ".txt", dump)
	if err != nil {
		t.Fatalf("WriteOutput() failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("WriteOutput() wrote %s, want a file in %s", path, dir)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "TestMACFlush_link-down_") || !strings.HasSuffix(base, ".txt") {
		t.Errorf("WriteOutput() file name %q, want TestMACFlush_link-down_<time>.txt", base)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(b) != dump {
		t.Errorf("WriteOutput() content %q, want %q", b, dump)
	}
}
