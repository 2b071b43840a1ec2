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
	"testing"

	"github.com/jetsetilly/gopher2600netplay/netplay/wire"
	"github.com/jetsetilly/gopher2600netplay/test"
)

// syncState builds a blob following emulation.VCS.CaptureSyncState's fixed
// layout, for tests that need to control exactly which field diverges.
func syncState(bios, toggle [2]byte, program string) []byte {
	b := append([]byte{}, bios[:]...)
	b = append(b, toggle[:]...)
	return append(b, program...)
}

func TestCompatibleSyncStateMatch(t *testing.T) {
	a := syncState([2]byte{1, 0}, [2]byte{0, 0}, "ntsc")
	b := syncState([2]byte{1, 0}, [2]byte{0, 0}, "ntsc")

	reason, ok := compatibleSyncState(a, b)
	if !ok {
		t.Fatalf("expected compatible, got reject reason %s", reason)
	}
}

func TestCompatibleSyncStateBIOSMismatch(t *testing.T) {
	a := syncState([2]byte{1, 0}, [2]byte{0, 0}, "ntsc")
	b := syncState([2]byte{2, 0}, [2]byte{0, 0}, "ntsc")

	reason, ok := compatibleSyncState(a, b)
	if ok {
		t.Fatalf("expected incompatible")
	}
	test.DemandEquality(t, reason, wire.RejectBIOSMismatch)
}

func TestCompatibleSyncStateBehaviorToggleMismatch(t *testing.T) {
	a := syncState([2]byte{1, 0}, [2]byte{0, 0}, "ntsc")
	b := syncState([2]byte{1, 0}, [2]byte{0, 1}, "ntsc")

	reason, ok := compatibleSyncState(a, b)
	if ok {
		t.Fatalf("expected incompatible")
	}
	test.DemandEquality(t, reason, wire.RejectBehaviorToggleMismatch)
}

func TestCompatibleSyncStateProgramMismatch(t *testing.T) {
	a := syncState([2]byte{1, 0}, [2]byte{0, 0}, "ntsc-a")
	b := syncState([2]byte{1, 0}, [2]byte{0, 0}, "ntsc-b")

	reason, ok := compatibleSyncState(a, b)
	if ok {
		t.Fatalf("expected incompatible")
	}
	test.DemandEquality(t, reason, wire.RejectProgramMismatch)
}

func TestCompatibleSyncStateProgramZeroTruncated(t *testing.T) {
	// trailing bytes after the first zero are padding/disc-side data and
	// must not affect the comparison.
	a := append(syncState([2]byte{1, 0}, [2]byte{0, 0}, "disc"), 0, 0xff, 0xff)
	b := append(syncState([2]byte{1, 0}, [2]byte{0, 0}, "disc"), 0, 0x11)

	_, ok := compatibleSyncState(a, b)
	if !ok {
		t.Fatalf("expected compatible once trailing bytes are truncated at the zero byte")
	}
}
