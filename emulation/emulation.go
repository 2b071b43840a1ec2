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

// Package emulation defines the minimal surface the netplay session needs
// from the emulator it is embedded in. The interfaces here exist mainly to
// avoid a circular import into the actual hardware package; the netplay
// module is built and tested against them without ever depending on a real
// VCS implementation.
package emulation

// VCS is a minimal abstraction of the emulator collaborator named in the
// netplay external interfaces. The only likely implementation is the real
// hardware.VCS type; tests use a fake that satisfies this interface.
type VCS interface {
	// CaptureSyncState returns a snapshot of everything that must be
	// byte-identical between peers for the simulation to stay synchronised.
	// The layout is fixed so the session can tell the three named causes of
	// mismatch apart instead of treating the blob as fully opaque:
	//
	//   [0:SyncStateBIOSLen]                       firmware/BIOS identifier
	//   [SyncStateBIOSLen:SyncStateFixedLen]        behaviour-affecting toggles
	//   [SyncStateFixedLen:]                        loaded program/disc identifier
	//
	// The first two fields are fixed-width and compared in full; the
	// trailing program identifier is variable-length and compared only up
	// to its first zero byte. Called once, before the session enters
	// Running.
	CaptureSyncState() []byte

	// ResetToSafeDefaults is called when the session opens, before any
	// peer-supplied configuration can influence the emulation.
	ResetToSafeDefaults() error

	// RestoreSettings reverses ResetToSafeDefaults. Called unconditionally
	// when the session closes, regardless of how it ended.
	RestoreSettings() error
}

// Sync-state field widths, shared by every VCS implementation and by the
// session's compatibility predicate (spec.md §3).
const (
	SyncStateBIOSLen   = 2
	SyncStateToggleLen = 2
	SyncStateFixedLen  = SyncStateBIOSLen + SyncStateToggleLen
)

// Mode indicates the broad features the host emulation is configured for.
type Mode int

// List of defined modes.
const (
	ModeNone Mode = iota
	ModeDebugger
	ModePlay
)

// State indicates the emulator's own run state, as distinct from the
// netplay session state (see netplay/session.State). A netplay session can
// only safely enter Running once the emulator itself is in Running.
type State int

// List of possible emulator states.
//
// Values are ordered so that order comparisons are meaningful. For example,
// Running is "greater than" Stepping, Paused, etc.
const (
	EmulatorStart State = iota
	Initialising
	Paused
	Stepping
	Running
	Ending
)
