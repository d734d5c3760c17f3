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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var outputsDir = flag.String("outputs_dir", "", "Directory where tests write their artifacts. Defaults to $TEST_UNDECLARED_OUTPUTS_DIR, then to a temporary directory.")

// sanitizeFilename keeps the characters that are safe in file names on
// every platform, turns separators into underscores and drops the rest.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case 'A' <= r && r <= 'Z', 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			return r
		case strings.ContainsRune("+,-.:;=^|~()<>[]{}", r):
			return r
		case strings.ContainsRune(" /_", r):
			return '_'
		}
		return -1
	}, name)
}

func outputDir() string {
	if *outputsDir != "" {
		return *outputsDir
	}
	if dir := os.Getenv("TEST_UNDECLARED_OUTPUTS_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// WriteOutput writes content to a new file named after name with the given
// suffix, e.g. ".txt", and returns its path.
func WriteOutput(name, suffix, content string) (string, error) {
	dir := outputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s_%s%s", sanitizeFilename(name), time.Now().Format("20060102-150405.000"), suffix)
	path := filepath.Join(dir, base)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
