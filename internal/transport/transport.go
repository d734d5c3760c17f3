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

// Package transport carries commands and state queries to the nodes of a
// test topology: a CLI over SSH or a local process for the switch and the
// hosts, and gNMI for switch state.
package transport

import (
	"context"

	"dario.cat/mergo"
)

// Commander sends one CLI command and returns its combined output.
type Commander interface {
	SendCommand(ctx context.Context, cmd string) (string, error)
}

// Options are the connection parameters of one protocol endpoint.
type Options struct {
	Target     string `yaml:"target,omitempty"`
	Username   string `yaml:"username,omitempty"`
	Password   string `yaml:"password,omitempty"`
	Insecure   bool   `yaml:"insecure,omitempty"`
	SkipVerify bool   `yaml:"skip_verify,omitempty"`
	// Timeout in seconds; zero means no per-attempt timeout.
	Timeout int `yaml:"timeout,omitempty"`
}

// Merge combines options. Later options override the non-zero fields of
// earlier ones, so callers pass them from the most generic to the most
// specific.
func Merge(opts ...*Options) Options {
	var result Options
	for _, o := range opts {
		if o == nil {
			continue
		}
		// Merging two values of the same struct type cannot fail.
		_ = mergo.Merge(&result, *o, mergo.WithOverride)
	}
	return result
}
