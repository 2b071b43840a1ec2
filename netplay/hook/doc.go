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

// Package hook implements the emulator controller-poll hook adapter of
// spec.md §4.5: it translates the emulator's byte-by-byte
// startPoll(port)/poll(value) controller protocol into frame-boundary
// events and get/set calls against a netplay session.
//
// The adapter is grounded directly on the original PCSX2 plugin's IOP
// hook (original_source/pcsx2/Netplay/IOPHook.cpp): StartPoll mirrors
// NETPADstartPoll (flush the just-assembled local frame, detect the
// command-0x42 frame boundary on the primary controller), Poll mirrors
// NETPADpoll (vibration bookkeeping, then byte-range dispatch into the
// synchronized/neutral/idle regions of the response), and SetSlot mirrors
// NETPADsetSlot.
//
// Two deliberate departures from the original, both recorded in
// DESIGN.md: ports and slots are taken to be zero-based in this package's
// own API (the original's off-by-one came from a PS2-specific plugin ABI
// that has no equivalent here), and vibration bytes are only recorded:
// every pad's rumble writes go into the adapter's vibrationRemap table,
// the primary controller's included, and the adapter neither zeroes nor
// passes on rumble for any controller or peer. Only the original's
// g_vibrationRemap bookkeeping survives, never its forwarding branch.
package hook
