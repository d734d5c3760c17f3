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

package dut

import (
	"context"
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/openconfig/macflush/internal/fdb"
)

// Config collects the commands of one configuration session. Nothing reaches
// the switch until the function given to Configure returns nil.
type Config struct {
	block
}

type block struct {
	cmds []string
}

func (b *block) add(format string, args ...any) {
	b.cmds = append(b.cmds, fmt.Sprintf(format, args...))
}

func (b *block) toggle(cmd string, on bool) {
	if on {
		b.add("%s", cmd)
		return
	}
	b.add("no %s", cmd)
}

// Command appends a raw configuration line.
func (c *Config) Command(format string, args ...any) {
	c.add(format, args...)
}

// AgeTime sets the aging period of dynamic entries.
func (c *Config) AgeTime(d time.Duration) {
	c.Command("mac-address-table age-time %d", int(d.Seconds()))
}

// StaticMAC configures e as a static entry.
func (c *Config) StaticMAC(e fdb.Entry) {
	c.Command("mac-address-table static %s vlan %s interface %s", e.MAC, e.VLAN, e.Port)
}

// NoStaticMAC removes the static entry e.
func (c *Config) NoStaticMAC(e fdb.Entry) {
	c.Command("no mac-address-table static %s vlan %s interface %s", e.MAC, e.VLAN, e.Port)
}

// NoVLAN deletes a VLAN.
func (c *Config) NoVLAN(id string) {
	c.Command("no vlan %s", id)
}

// Interface opens an interface context inside the session.
func (c *Config) Interface(port string, fn func(*InterfaceConfig) error) error {
	ic := &InterfaceConfig{}
	if err := fn(ic); err != nil {
		return fmt.Errorf("interface %s: %w", port, err)
	}
	c.add("interface %s", port)
	c.cmds = append(c.cmds, ic.cmds...)
	c.add("exit")
	return nil
}

// VLAN opens a VLAN context inside the session, creating the VLAN.
func (c *Config) VLAN(id string, fn func(*VLANConfig) error) error {
	vc := &VLANConfig{}
	if err := fn(vc); err != nil {
		return fmt.Errorf("vlan %s: %w", id, err)
	}
	c.add("vlan %s", id)
	c.cmds = append(c.cmds, vc.cmds...)
	c.add("exit")
	return nil
}

// InterfaceConfig is an interface context.
type InterfaceConfig struct {
	block
}

// Routing moves the port to routed (true) or switched (false) mode.
func (ic *InterfaceConfig) Routing(on bool) { ic.toggle("routing", on) }

// Shutdown disables (true) or enables (false) the port.
func (ic *InterfaceConfig) Shutdown(on bool) { ic.toggle("shutdown", on) }

// AccessVLAN makes the port an access port of vlan.
func (ic *InterfaceConfig) AccessVLAN(id string) { ic.add("vlan access %s", id) }

// VLANConfig is a VLAN context.
type VLANConfig struct {
	block
}

// Shutdown disables (true) or enables (false) the VLAN.
func (vc *VLANConfig) Shutdown(on bool) { vc.toggle("shutdown", on) }

// Configure runs fn in a global configuration session and commits the
// collected commands as one block. When fn fails or panics the session is
// discarded and nothing is sent.
func (s *Switch) Configure(ctx context.Context, fn func(*Config) error) error {
	c := &Config{}
	defer func() {
		if r := recover(); r != nil {
			log.Warningf("%s: configuration session discarded (%d commands) after panic", s.Name, len(c.cmds))
			panic(r)
		}
	}()
	if err := fn(c); err != nil {
		log.Warningf("%s: configuration session discarded (%d commands): %v", s.Name, len(c.cmds), err)
		return fmt.Errorf("configuring %s: %w", s.Name, err)
	}
	if len(c.cmds) == 0 {
		return nil
	}
	lines := make([]string, 0, len(c.cmds)+2)
	lines = append(lines, "configure terminal")
	lines = append(lines, c.cmds...)
	lines = append(lines, "end")
	if _, err := s.run(ctx, lines...); err != nil {
		return fmt.Errorf("configuring %s: %w", s.Name, err)
	}
	return nil
}

// ConfigInterface runs fn in the context of port.
func (s *Switch) ConfigInterface(ctx context.Context, port string, fn func(*InterfaceConfig) error) error {
	return s.Configure(ctx, func(c *Config) error { return c.Interface(port, fn) })
}

// ConfigVLAN runs fn in the context of VLAN id.
func (s *Switch) ConfigVLAN(ctx context.Context, id string, fn func(*VLANConfig) error) error {
	return s.Configure(ctx, func(c *Config) error { return c.VLAN(id, fn) })
}

// DeleteVLAN removes VLAN id.
func (s *Switch) DeleteVLAN(ctx context.Context, id string) error {
	return s.Configure(ctx, func(c *Config) error {
		c.NoVLAN(id)
		return nil
	})
}

// SetAgeTime sets the aging period of dynamic entries.
func (s *Switch) SetAgeTime(ctx context.Context, d time.Duration) error {
	if d < time.Second {
		return fmt.Errorf("age time %v is below one second", d)
	}
	return s.Configure(ctx, func(c *Config) error {
		c.AgeTime(d)
		return nil
	})
}

// AddStaticMAC configures e as a static entry.
func (s *Switch) AddStaticMAC(ctx context.Context, e fdb.Entry) error {
	mac, err := fdb.ParseMAC(e.MAC)
	if err != nil {
		return err
	}
	e.MAC = mac
	return s.Configure(ctx, func(c *Config) error {
		c.StaticMAC(e)
		return nil
	})
}

// RemoveStaticMAC removes the static entry e.
func (s *Switch) RemoveStaticMAC(ctx context.Context, e fdb.Entry) error {
	mac, err := fdb.ParseMAC(e.MAC)
	if err != nil {
		return err
	}
	e.MAC = mac
	return s.Configure(ctx, func(c *Config) error {
		c.NoStaticMAC(e)
		return nil
	})
}
