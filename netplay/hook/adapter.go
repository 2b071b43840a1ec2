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
	"time"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/logger"
	"github.com/jetsetilly/gopher2600netplay/netplay/session"
)

// errSessionNotRunning is returned internally by fetchSynced when the
// session ends before reaching Running; never surfaced to the emulator,
// which only ever sees neutral bytes in that case.
const errSessionNotRunning = "hook: session did not reach Running"

// cmdReadController is the poll command byte that marks a controller read,
// mirroring IOPHook.cpp's 0x42 check.
const cmdReadController = 0x42

// runningPollInterval is how often a blocked synchronized read rechecks
// session state before the session reaches Running, mirroring
// NetplayPlugin.cpp's HandleIO busy-wait ("FIXME: this delays connection by
// up to 150ms; use a signal or something instead" -- we use a tighter
// interval since sync.Cond isn't available across this boundary).
const runningPollInterval = time.Millisecond

// neutralButtons and neutralAnalog are the idle values injected for an
// unassigned or timed-out controller, per spec.md §4.5 ("buttons 0xFF
// idle, analogs 0x7F centered").
const (
	neutralButtons = 0xFF
	neutralAnalog  = 0x7F
)

// Session is the subset of *session.Session the adapter depends on,
// narrowed the way the teacher's own emulation.VCS collaborator interface
// is narrowed, so the adapter can be driven by a fake in tests.
type Session interface {
	LocalSide() uint8
	NumPlayers() int
	State() session.State
	PublishLocal(input []byte) error
	WaitForInput(side uint8, frame uint32) ([]byte, error)
}

// Adapter translates the emulator's byte-by-byte controller poll protocol
// into calls against a Session. It is grounded directly on
// original_source/pcsx2/Netplay/IOPHook.cpp (the byte-stream interception)
// and NetplayPlugin.cpp's AcceptInput/NextFrame/HandleIO/RemapVibrate (the
// session-level semantics those intercepted bytes drive).
//
// An Adapter is not safe for concurrent use: the emulator drives
// SetSlot/StartPoll/Poll sequentially from a single thread, exactly as the
// original plugin's IOP hook does. The one blocking call inside Poll
// releases the adapter's own mutex so SetSlot remains callable from
// another thread if the host ever needs it, but it will not be called
// mid-poll by the emulator itself.
type Adapter struct {
	mu      sync.Mutex
	session Session

	slot [2]int // mirrors g_pollSlot, indexed by port

	port  int
	pad   int // currentPad(port, slot[port]) for the poll in progress
	cmd   byte
	index int // byte offset within the current poll, mirrors g_pollIndex

	frame        uint32
	frameStarted bool

	pendingLocal bool
	localInput   [session.InputWidth]byte

	cachedInput [session.InputWidth]byte
	cachedValid bool

	vibrationRemap [8][2]byte
}

// NewAdapter returns an Adapter driving s. s is normally a *session.Session
// already past Ready (Running), but the adapter tolerates being wired up
// earlier: StartPoll/Poll simply inject neutral values until s reaches
// Running.
func NewAdapter(s Session) *Adapter {
	return &Adapter{session: s}
}

// SetSlot records the slot assigned to port, mirroring IOPHook.cpp's
// NETPADsetSlot. Ports and slots are zero-based in this package's API
// (the original's 1-based numbering was an artifact of its plugin ABI);
// see the package doc.
func (a *Adapter) SetSlot(port, slot int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if port < 0 || port > 1 {
		return
	}
	a.slot[port] = slot
}

// currentPad maps a (port, slot) pair to the original plugin's flattened
// 8-pad numbering, mirroring IOPHook.cpp's NET_CurrentPad: port 0 slot 0 is
// pad 0 (the single physically-local controller); port 1 slots 0-3 are pads
// 1-4; port 0 slots 1-3 are pads 5-7 (multitap on the primary port).
func currentPad(port, slot int) int {
	if slot != 0 {
		if port == 0 {
			return slot + 4
		}
		return slot + 1
	}
	return port
}

// neutralOf returns the idle value for a synchronized byte offset, per
// spec.md §4.5: the first two bytes are digital buttons, the remainder
// analog axes.
func neutralOf(byteIndex int) byte {
	if byteIndex < 2 {
		return neutralButtons
	}
	return neutralAnalog
}

// StartPoll begins a new controller poll on port, mirroring
// NETPADstartPoll. It flushes the local input assembled during the
// previous pad-0 poll (AcceptInput's deferred-by-one-poll timing) before
// resolving the new port's pad and, if that pad is the primary controller
// re-starting a read-controller command, advancing the frame boundary.
func (a *Adapter) StartPoll(port int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pendingLocal {
		local := make([]byte, session.InputWidth)
		copy(local, a.localInput[:])
		a.pendingLocal = false
		if err := a.session.PublishLocal(local); err != nil {
			logger.Logf(logger.Allow, "hook", "PublishLocal failed: %v", err)
		}
	}

	a.port = port
	a.index = 0
	a.cachedValid = false

	if port < 0 || port > 1 {
		a.pad = -1
		return
	}
	a.pad = currentPad(port, a.slot[port])

	if a.pad == 0 && a.cmd == cmdReadController {
		if a.frameStarted {
			a.frame++
		}
		a.frameStarted = true
	}
}

// Poll supplies the next byte of the command/response exchange and returns
// the controller's reply byte, mirroring NETPADpoll: byte 0 is the command
// byte, bytes 2-3 double as vibration-motor writes (recorded for
// bookkeeping only, per spec.md §4.5's no-forwarding scope), and bytes 2
// through 1+session.InputWidth are synchronized via the session.
func (a *Adapter) Poll(value byte) byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	index := a.index
	a.index++

	if index == 0 {
		a.cmd = value
		if a.pad == 0 && a.cmd == cmdReadController {
			a.pendingLocal = true
		}
		return 0
	}

	if a.cmd != cmdReadController {
		return 0
	}

	if (index == 2 || index == 3) && a.pad >= 0 && a.pad < 8 {
		a.vibrationRemap[a.pad][index-2] = value
	}

	if index < 2 {
		return 0
	}

	byteIndex := index - 2
	if byteIndex < session.InputWidth {
		if a.pad == 0 {
			a.localInput[byteIndex] = value
		}
		return a.syncedByte(byteIndex)
	}
	if byteIndex < 8 {
		return neutralAnalog
	}
	return neutralButtons
}

// syncedByte returns byteIndex of the current poll's synchronized record,
// fetching it from the session exactly once per poll -- on its first
// synchronized byte -- and serving the rest from that cached record, per
// spec.md §4.5's "the block ... happens on the first synchronized byte ...
// then all subsequent bytes draw from the same already-received record."
// Called with a.mu held.
func (a *Adapter) syncedByte(byteIndex int) byte {
	if byteIndex == 0 {
		a.fetchSynced()
	}
	if !a.cachedValid {
		return neutralOf(byteIndex)
	}
	return a.cachedInput[byteIndex]
}

// fetchSynced resolves the side to read for the poll in progress --
// LocalSide() for the primary controller (port 0 sees its own side
// regardless of network assignment), the pad number itself for any other
// assigned side, neutral for an unassigned pad -- and blocks on the
// session for that side's record. Called with a.mu held; releases it for
// the blocking portion.
func (a *Adapter) fetchSynced() {
	pad := a.pad
	frame := a.frame

	var side uint8
	if pad == 0 {
		side = a.session.LocalSide()
	} else if pad > 0 && pad < a.session.NumPlayers() {
		side = uint8(pad)
	} else {
		a.cachedValid = false
		return
	}

	a.mu.Unlock()
	var input []byte
	var err error
	if a.waitForRunning() {
		input, err = a.session.WaitForInput(side, frame)
	} else {
		err = curated.Errorf(errSessionNotRunning)
	}
	a.mu.Lock()

	if err != nil {
		a.cachedValid = false
		return
	}

	n := copy(a.cachedInput[:], input)
	for i := n; i < session.InputWidth; i++ {
		a.cachedInput[i] = neutralOf(i)
	}
	a.cachedValid = true
}

// waitForRunning blocks until the session reaches Running or a terminal
// state, mirroring HandleIO's busy-wait for the session to start. Returns
// false if the session ended before becoming Running. Must be called
// without a.mu held.
func (a *Adapter) waitForRunning() bool {
	for {
		switch a.session.State() {
		case session.Running:
			return true
		case session.Cancelled, session.Ended:
			return false
		}
		time.Sleep(runningPollInterval)
	}
}
