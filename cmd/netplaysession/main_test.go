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

package main

import (
	"testing"

	"github.com/jetsetilly/gopher2600netplay/netplay/session"
)

func TestBuildConfigHostMode(t *testing.T) {
	cfg, err := buildConfig(session.ModeHost, 58813, "", 0, 4, "alice", true)
	if err != nil {
		t.Fatalf("buildConfig returned error: %v", err)
	}
	if cfg.ModeValue() != session.ModeHost {
		t.Errorf("mode = %s, want Host", cfg.ModeValue())
	}
	if n := cfg.NumPlayers.Get().(int); n != 4 {
		t.Errorf("num_players = %d, want 4", n)
	}
	if !cfg.SaveReplay.Get().(bool) {
		t.Errorf("save_replay = false, want true")
	}
}

func TestBuildConfigHostModeRejectsZeroPort(t *testing.T) {
	if _, err := buildConfig(session.ModeHost, 0, "", 0, 2, "alice", false); err == nil {
		t.Fatalf("expected error for local_bind_port 0 in Host mode, got nil")
	}
}

func TestBuildConfigConnectModeRequiresPeer(t *testing.T) {
	if _, err := buildConfig(session.ModeConnect, 0, "", 0, 0, "bob", false); err == nil {
		t.Fatalf("expected error for missing peer_address in Connect mode, got nil")
	}
}

func TestBuildConfigConnectMode(t *testing.T) {
	cfg, err := buildConfig(session.ModeConnect, 0, "192.168.1.10", 58813, 0, "bob", false)
	if err != nil {
		t.Fatalf("buildConfig returned error: %v", err)
	}
	if cfg.ModeValue() != session.ModeConnect {
		t.Errorf("mode = %s, want Connect", cfg.ModeValue())
	}
	if cfg.PeerAddress.String() != "192.168.1.10" {
		t.Errorf("peer_address = %q, want %q", cfg.PeerAddress.String(), "192.168.1.10")
	}
}

func TestBuildConfigObserveModeIgnoresNumPlayers(t *testing.T) {
	// num_players is meaningless in Observe mode; passing 0 (as the CLI
	// does for connect/observe) must not trip NumPlayers' own [2,8] bound.
	cfg, err := buildConfig(session.ModeObserve, 0, "192.168.1.10", 58813, 0, "watcher", false)
	if err != nil {
		t.Fatalf("buildConfig returned error: %v", err)
	}
	if cfg.ModeValue() != session.ModeObserve {
		t.Errorf("mode = %s, want Observe", cfg.ModeValue())
	}
}
