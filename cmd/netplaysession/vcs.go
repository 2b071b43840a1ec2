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
	"github.com/jetsetilly/gopher2600netplay/emulation"
	"github.com/jetsetilly/gopher2600netplay/logger"
)

// identityVCS satisfies emulation.VCS for this standalone front end, which
// has no console of its own to reset or restore. It has no BIOS or
// behaviour toggles either, so it reports those fixed fields as zero and
// carries the user-supplied -romid string as the variable-length program
// identifier: two netplaysession instances only agree to start a session
// if that string matches, exactly as two real emulators only agree if
// their loaded cartridge identifiers match.
type identityVCS struct {
	id string
}

func newIdentityVCS(id string) *identityVCS {
	return &identityVCS{id: id}
}

func (v *identityVCS) CaptureSyncState() []byte {
	b := make([]byte, emulation.SyncStateFixedLen, emulation.SyncStateFixedLen+len(v.id))
	return append(b, v.id...)
}

func (v *identityVCS) ResetToSafeDefaults() error {
	logger.Logf(logger.Allow, "netplaysession", "reset to safe defaults (no console attached)")
	return nil
}

func (v *identityVCS) RestoreSettings() error {
	logger.Logf(logger.Allow, "netplaysession", "restore settings (no console attached)")
	return nil
}
