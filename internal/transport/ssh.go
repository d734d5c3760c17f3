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
	"fmt"
	"net"
	"os"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSH implements Commander with one SSH session per command.
type SSH struct {
	client *ssh.Client
}

// NewSSH wraps an established SSH client.
func NewSSH(sc *ssh.Client) *SSH {
	return &SSH{client: sc}
}

// SendCommand runs cmd in a new session. Canceling ctx closes the session.
func (c *SSH) SendCommand(ctx context.Context, cmd string) (string, error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("could not create session: %w", err)
	}
	defer sess.Close()

	type result struct {
		buf []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		buf, err := sess.CombinedOutput(cmd)
		done <- result{buf, err}
	}()

	select {
	case <-ctx.Done():
		sess.Close()
		return "", fmt.Errorf("command %q: %w", cmd, ctx.Err())
	case r := <-done:
		log.V(2).Infof("ssh %s: %q -> %q", c.client.RemoteAddr(), cmd, r.buf)
		if r.err != nil {
			return string(r.buf), fmt.Errorf("could not execute command %q: %w", cmd, r.err)
		}
		return string(r.buf), nil
	}
}

// Close closes the underlying connection.
func (c *SSH) Close() error {
	return c.client.Close()
}

var knownHostsFiles = []string{
	"$HOME/.ssh/known_hosts",
	"/etc/ssh/ssh_known_hosts",
}

// knownHostsCallback checks the user and system SSH known_hosts.
func knownHostsCallback() (ssh.HostKeyCallback, error) {
	var files []string
	for _, file := range knownHostsFiles {
		file = os.ExpandEnv(file)
		if _, err := os.Stat(file); err == nil {
			files = append(files, file)
		}
	}
	return knownhosts.New(files...)
}

// For every question asked in an interactive login ssh session, set the answer to user password.
func sshInteractive(password string) ssh.KeyboardInteractiveChallenge {
	return func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for n := range questions {
			answers[n] = password
		}
		return answers, nil
	}
}

func sshConfig(o Options) (*ssh.ClientConfig, error) {
	c := &ssh.ClientConfig{
		User: o.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(o.Password),
			ssh.KeyboardInteractive(sshInteractive(o.Password)),
		},
		Timeout: time.Duration(o.Timeout) * time.Second,
	}
	if o.SkipVerify {
		c.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		cb, err := knownHostsCallback()
		if err != nil {
			return nil, err
		}
		c.HostKeyCallback = cb
	}
	return c, nil
}

// DialSSH dials an SSH client using the options. A target without a port
// uses port 22.
func DialSSH(o Options) (*SSH, error) {
	c, err := sshConfig(o)
	if err != nil {
		return nil, err
	}
	target := o.Target
	if _, _, err := net.SplitHostPort(target); err != nil {
		target += ":22"
	}
	sc, err := ssh.Dial("tcp", target, c)
	if err != nil {
		return nil, fmt.Errorf("dialing ssh %s: %w", target, err)
	}
	return NewSSH(sc), nil
}
