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

package hook

import (
	"sync"
	"testing"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/netplay/session"
)

// fakeSession is a minimal, in-memory stand-in for *session.Session that
// satisfies the Session interface, letting the adapter's byte-level
// dispatch be exercised without a real handshake or network endpoint.
type fakeSession struct {
	mu         sync.Mutex
	state      session.State
	localSide  uint8
	numPlayers int
	published  [][]byte
	records    map[uint8]map[uint32][]byte
}

func newFakeSession(numPlayers int, localSide uint8) *fakeSession {
	return &fakeSession{
		state:      session.Running,
		localSide:  localSide,
		numPlayers: numPlayers,
		records:    make(map[uint8]map[uint32][]byte),
	}
}

func (f *fakeSession) set(side uint8, frame uint32, input []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.records[side]
	if !ok {
		m = make(map[uint32][]byte)
		f.records[side] = m
	}
	m[frame] = input
}

func (f *fakeSession) LocalSide() uint8 { return f.localSide }

func (f *fakeSession) NumPlayers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.numPlayers
}

func (f *fakeSession) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) PublishLocal(input []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(input))
	copy(cp, input)
	f.published = append(f.published, cp)
	return nil
}

func (f *fakeSession) WaitForInput(side uint8, frame uint32) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.records[side]
	if !ok {
		return nil, curated.Errorf("fakeSession: no record for side %d", side)
	}
	input, ok := m[frame]
	if !ok {
		return nil, curated.Errorf("fakeSession: no record for side %d frame %d", side, frame)
	}
	return input, nil
}

func TestCurrentPadMapping(t *testing.T) {
	cases := []struct {
		port, slot, want int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{1, 1, 2},
		{1, 2, 3},
		{1, 3, 4},
		{0, 1, 5},
		{0, 2, 6},
		{0, 3, 7},
	}
	for _, c := range cases {
		if got := currentPad(c.port, c.slot); got != c.want {
			t.Errorf("currentPad(%d, %d) = %d, want %d", c.port, c.slot, got, c.want)
		}
	}
}

// pollReadController drives a complete 0x42 command through the adapter
// for port, with the bytes the emulator writes for the synchronized range
// given by local (nil bytes are passed as 0). It returns the bytes the
// adapter returned for indices 2..1+session.InputWidth.
func pollReadController(a *Adapter, port int, local []byte) []byte {
	a.StartPoll(port)
	a.Poll(cmdReadController) // index 0: command byte
	a.Poll(0)                 // index 1: unused
	out := make([]byte, session.InputWidth)
	for i := 0; i < session.InputWidth; i++ {
		var v byte
		if i < len(local) {
			v = local[i]
		}
		out[i] = a.Poll(v)
	}
	return out
}

func TestStartPollDetectsFrameBoundaryAndDefersPublish(t *testing.T) {
	fs := newFakeSession(2, 0)
	a := NewAdapter(fs)

	local0 := []byte{1, 2, 3, 4, 5, 6}
	pollReadController(a, 0, local0)

	if len(fs.published) != 0 {
		t.Fatalf("expected no publish on the first frame boundary, got %d", len(fs.published))
	}

	fs.set(0, 0, local0) // side 0's own frame-0 record, for the read-back below
	out := pollReadController(a, 0, []byte{9, 9, 9, 9, 9, 9})

	if len(fs.published) != 1 {
		t.Fatalf("expected exactly one deferred publish, got %d", len(fs.published))
	}
	for i, b := range fs.published[0] {
		if b != local0[i] {
			t.Errorf("published byte %d = %d, want %d", i, b, local0[i])
		}
	}

	// port 0 always reads LocalSide()'s own queue, regardless of network
	// side assignment, per spec.md §4.5.
	for i, b := range out {
		if b != local0[i] {
			t.Errorf("returned byte %d = %d, want %d (side's own record)", i, b, local0[i])
		}
	}
}

func TestPollReturnsSyncedValueForAssignedSide(t *testing.T) {
	fs := newFakeSession(2, 0)
	a := NewAdapter(fs)
	a.SetSlot(1, 0) // port 1 slot 0 -> pad 1

	remote := []byte{10, 20, 30, 40, 50, 60}
	fs.set(1, 0, remote)

	out := pollReadController(a, 1, nil)
	for i, b := range out {
		if b != remote[i] {
			t.Errorf("byte %d = %d, want %d", i, b, remote[i])
		}
	}
}

func TestPollInjectsNeutralForUnassignedPad(t *testing.T) {
	fs := newFakeSession(2, 0)
	a := NewAdapter(fs)
	a.SetSlot(1, 0) // pad 1, but numPlayers is 2 so pad 1 is assigned...
	fs.numPlayers = 1

	out := pollReadController(a, 1, nil)
	if out[0] != neutralButtons || out[1] != neutralButtons {
		t.Errorf("expected neutral buttons for unassigned pad, got %v", out[:2])
	}
	for i := 2; i < session.InputWidth; i++ {
		if out[i] != neutralAnalog {
			t.Errorf("expected neutral analog at index %d, got %d", i, out[i])
		}
	}
}

func TestPollInjectsNeutralOnWaitTimeout(t *testing.T) {
	fs := newFakeSession(2, 0)
	a := NewAdapter(fs)
	a.SetSlot(1, 0)
	// no record ever set for side 1: WaitForInput always errors.

	out := pollReadController(a, 1, nil)
	if out[0] != neutralButtons || out[1] != neutralButtons {
		t.Errorf("expected neutral buttons, got %v", out[:2])
	}
}

func TestPollIgnoresBytesOutsideReadControllerCommand(t *testing.T) {
	fs := newFakeSession(2, 0)
	a := NewAdapter(fs)

	a.StartPoll(0)
	if got := a.Poll(0x43); got != 0 {
		t.Fatalf("unexpected response to command byte: %d", got)
	}
	if got := a.Poll(0xAB); got != 0 {
		t.Errorf("expected 0 for non-0x42 command byte, got %d", got)
	}
}

func TestVibrationBookkeepingDoesNotAffectSyncedReturn(t *testing.T) {
	fs := newFakeSession(2, 0)
	a := NewAdapter(fs)
	a.SetSlot(1, 0)

	remote := []byte{1, 1, 1, 1, 1, 1}
	fs.set(1, 0, remote)

	a.StartPoll(1)
	a.Poll(cmdReadController)
	a.Poll(0)
	// bytes 2 and 3 carry rumble motor values from the emulator; they must
	// not leak into the returned controller data.
	got2 := a.Poll(0xEE)
	got3 := a.Poll(0xDD)
	if got2 != remote[0] || got3 != remote[1] {
		t.Errorf("vibration write bled into synced read: got (%d, %d), want (%d, %d)", got2, got3, remote[0], remote[1])
	}
	if a.vibrationRemap[1][0] != 0xEE || a.vibrationRemap[1][1] != 0xDD {
		t.Errorf("vibration bookkeeping not recorded: %v", a.vibrationRemap[1])
	}
}

func TestSetSlotIgnoresOutOfRangePort(t *testing.T) {
	fs := newFakeSession(2, 0)
	a := NewAdapter(fs)
	a.SetSlot(5, 2) // should be a silent no-op, not a panic
	if a.slot[0] != 0 || a.slot[1] != 0 {
		t.Errorf("expected slots unchanged, got %v", a.slot)
	}
}
