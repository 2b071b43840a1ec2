// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package session

import (
	"strings"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/prefs"
)

// Mode selects how the session reaches its first peer, per spec.md §3.
type Mode int

// List of defined modes.
const (
	ModeHost Mode = iota
	ModeConnect
	ModeObserve
)

func (m Mode) String() string {
	switch m {
	case ModeHost:
		return "Host"
	case ModeConnect:
		return "Connect"
	case ModeObserve:
		return "Observe"
	default:
		return "Unknown"
	}
}

// ErrUnrecognizedOption is the curated pattern returned by Config.Set for
// any key not named in spec.md §3.
const ErrUnrecognizedOption = "session: unrecognized configuration option %q"

// ErrInvalidOption is the curated pattern returned when a recognized
// option is set to a value outside its allowed range or shape.
const ErrInvalidOption = "session: invalid value for %q: %v"

// ErrIncompleteConfiguration is the curated pattern returned by Validate
// when a mode-dependent required option is missing.
const ErrIncompleteConfiguration = "session: %q is required in %s mode"

// Config holds the session configuration of spec.md §3. Every field is a
// prefs primitive so that validation happens where the value is set,
// exactly as gopher2600/prefs types validate themselves; unrecognized
// option names are rejected by Set rather than silently accepted as new
// struct fields.
type Config struct {
	Mode           prefs.Generic
	LocalBindPort  prefs.Int
	PeerAddress    prefs.String
	PeerPort       prefs.Int
	NumPlayers     prefs.Int
	Username       prefs.String
	SaveReplay     prefs.Bool

	mode Mode
}

// NewConfig returns a Config with every field validated on Set. The zero
// value of local_bind_port is left as the default since it is a valid,
// ephemeral choice in Connect/Observe mode; Validate rejects it in Host
// mode, where a client needs a known port to connect to. num_players
// defaults to 2.
func NewConfig() *Config {
	c := &Config{mode: ModeHost}

	c.Mode = *prefs.NewGeneric(
		func(v prefs.Value) error {
			s, ok := v.(string)
			if !ok {
				return curated.Errorf(ErrInvalidOption, "mode", v)
			}
			switch strings.ToLower(s) {
			case "host":
				c.mode = ModeHost
			case "connect":
				c.mode = ModeConnect
			case "observe":
				c.mode = ModeObserve
			default:
				return curated.Errorf(ErrInvalidOption, "mode", v)
			}
			return nil
		},
		func() prefs.Value { return c.mode.String() },
	)

	c.LocalBindPort.SetHookPre(func(v prefs.Value) error {
		p := v.(int)
		if p < 0 || p > 65535 {
			return curated.Errorf(ErrInvalidOption, "local_bind_port", v)
		}
		return nil
	})

	c.PeerPort.SetHookPre(func(v prefs.Value) error {
		p := v.(int)
		if p < 1 || p > 65535 {
			return curated.Errorf(ErrInvalidOption, "peer_port", v)
		}
		return nil
	})

	c.NumPlayers.SetHookPre(func(v prefs.Value) error {
		n := v.(int)
		if n < 2 || n > 8 {
			return curated.Errorf(ErrInvalidOption, "num_players", v)
		}
		return nil
	})

	c.Username.SetMaxLen(64)

	_ = c.NumPlayers.Set(2)

	return c
}

// ModeValue returns the parsed Mode, for callers that don't want to
// re-parse the string Generic holds.
func (c *Config) ModeValue() Mode {
	return c.mode
}

// Set dispatches a single configuration option by name, matching spec.md
// §3's "recognized options; all others rejected". Option names use the
// wire/spec spelling (snake_case).
func (c *Config) Set(key string, value prefs.Value) error {
	switch key {
	case "mode":
		return c.Mode.Set(value)
	case "local_bind_port":
		return c.LocalBindPort.Set(value)
	case "peer_address":
		return c.PeerAddress.Set(value)
	case "peer_port":
		return c.PeerPort.Set(value)
	case "num_players":
		return c.NumPlayers.Set(value)
	case "username":
		return c.Username.Set(value)
	case "save_replay":
		return c.SaveReplay.Set(value)
	default:
		return curated.Errorf(ErrUnrecognizedOption, key)
	}
}

// Validate checks the mode-dependent requirements spec.md §3 implies but
// does not enforce per-field: peer_address/peer_port are required outside
// Host mode, num_players is meaningful only for Host.
func (c *Config) Validate() error {
	switch c.mode {
	case ModeConnect, ModeObserve:
		if c.PeerAddress.String() == "" {
			return curated.Errorf(ErrIncompleteConfiguration, "peer_address", c.mode)
		}
		if c.PeerPort.Get().(int) == 0 {
			return curated.Errorf(ErrIncompleteConfiguration, "peer_port", c.mode)
		}
	case ModeHost:
		if c.LocalBindPort.Get().(int) == 0 {
			return curated.Errorf(ErrIncompleteConfiguration, "local_bind_port", c.mode)
		}
	}
	return nil
}
