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
	"errors"
	"fmt"
	"os/exec"

	log "github.com/golang/glog"
	"github.com/mattn/go-shellwords"
)

// Exec implements Commander by running commands on the local machine
// behind a fixed prefix, e.g. ["docker", "exec", "hs1"] for a container
// host or ["ip", "netns", "exec", "hs1"] for a namespace host.
type Exec struct {
	Prefix []string
}

// SendCommand splits cmd with shell quoting rules and runs it.
func (e *Exec) SendCommand(ctx context.Context, cmd string) (string, error) {
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return "", fmt.Errorf("could not split command %q: %w", cmd, err)
	}
	argv := append(append([]string{}, e.Prefix...), args...)
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	log.V(2).Infof("exec %q -> %q", argv, out)
	if err != nil {
		return string(out), fmt.Errorf("could not execute command %q: %w", cmd, err)
	}
	return string(out), nil
}
