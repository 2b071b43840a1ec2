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

package framequeue

import (
	"sync"
	"time"

	"github.com/jetsetilly/gopher2600netplay/curated"
)

// ErrNotRunning is the curated pattern returned by Set when the queue has
// not yet been started (see Start).
const ErrNotRunning = "framequeue: set rejected: queue is not running"

// ErrTimeout is the curated pattern returned by Get when timeoutMS elapses
// with no input published for the requested (side, frame).
const ErrTimeout = "framequeue: get timeout: side %d frame %d"

// ErrCancelled is the curated pattern returned by Get (and by any blocked
// caller) once Cancel has been called.
const ErrCancelled = "framequeue: cancelled"

// side holds one side's received inputs, plus bookkeeping for
// retransmission and garbage collection.
type side struct {
	inputs       map[uint32][]byte
	recvFrontier uint32 // lowest frame number not yet seen from this side
}

// Queue is the per-session frame exchange described in spec.md §4.4. It is
// safe for concurrent use: Set is called from the hook adapter's thread,
// PublishRemote from the network receive thread, and Get from whichever of
// those is waiting on the other side's input.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	localSide   uint8
	inputWidth  int
	numSides    int
	running     bool
	cancelled   bool
	currentLocalFrame uint32

	sides map[uint8]*side
}

// New creates a Queue for a session with numSides participants, where the
// local emulator instance drives localSide and samples inputWidth bytes of
// controller state per frame.
func New(localSide uint8, numSides int, inputWidth int) *Queue {
	q := &Queue{
		localSide:  localSide,
		inputWidth: inputWidth,
		numSides:   numSides,
		sides:      make(map[uint8]*side),
	}
	q.cond = sync.NewCond(&q.mu)
	for s := 0; s < numSides; s++ {
		q.sides[uint8(s)] = &side{inputs: make(map[uint32][]byte)}
	}
	return q
}

// Start transitions the queue into the running state, pre-priming delay
// frames of all-zero input on every side as spec.md §4.3 requires ("The
// queue is pre-primed with d 'all zero' frames on both sides before
// Running so that frame 0 has inputs available immediately").
func (q *Queue) Start(delay int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	zero := make([]byte, q.inputWidth)
	for s := range q.sides {
		for f := uint32(0); f < uint32(delay); f++ {
			q.sides[s].inputs[f] = append([]byte(nil), zero...)
		}
		q.sides[s].recvFrontier = uint32(delay)
	}
	q.currentLocalFrame = uint32(delay)
	q.running = true

	q.cond.Broadcast()
}

// Cancel wakes every blocked Get with ErrCancelled and prevents further
// Set calls from succeeding. Idempotent.
func (q *Queue) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelled = true
	q.running = false
	q.cond.Broadcast()
}

// Set publishes the local side's input for the current local frame, then
// advances the local frame counter by exactly one (spec.md §8: "set is
// monotonic in frame number; two successive set calls advance the local
// frame counter by exactly one").
func (q *Queue) Set(input []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return curated.Errorf(ErrNotRunning)
	}

	frame := q.currentLocalFrame
	s := q.sides[q.localSide]
	if _, exists := s.inputs[frame]; !exists {
		s.inputs[frame] = append([]byte(nil), input...)
	}
	q.currentLocalFrame++

	if frame+1 > s.recvFrontier {
		s.recvFrontier = frame + 1
	}

	q.cond.Broadcast()

	return nil
}

// CurrentLocalFrame returns the next frame number Set will publish.
func (q *Queue) CurrentLocalFrame() uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentLocalFrame
}

// PublishRemote records an input received from the network for the given
// side and frame. Returns false if the record was a duplicate (already
// present, or below that side's recvFrontier) and true if it was newly
// recorded. Per spec.md §3, once written a frame's input is immutable:
// PublishRemote never overwrites an existing entry.
func (q *Queue) PublishRemote(s uint8, frame uint32, input []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	side, ok := q.sides[s]
	if !ok {
		return false
	}

	if frame < side.recvFrontier {
		return false
	}

	if _, exists := side.inputs[frame]; exists {
		return false
	}

	side.inputs[frame] = append([]byte(nil), input...)

	if frame == side.recvFrontier {
		side.recvFrontier++
		// absorb any frames that arrived out of order and are now contiguous
		for {
			if _, ok := side.inputs[side.recvFrontier]; !ok {
				break
			}
			side.recvFrontier++
		}
	}

	q.cond.Broadcast()

	return true
}

// Get returns the input side published for frame, blocking until it
// arrives, the queue is cancelled, or timeout elapses.
func (q *Queue) Get(s uint8, frame uint32, timeout time.Duration) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	deadline := time.Now().Add(timeout)

	for {
		if q.cancelled {
			return nil, curated.Errorf(ErrCancelled)
		}

		side, ok := q.sides[s]
		if ok {
			if v, exists := side.inputs[frame]; exists {
				return v, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, curated.Errorf(ErrTimeout, s, frame)
		}

		if !waitWithTimeout(q.cond, remaining) {
			return nil, curated.Errorf(ErrTimeout, s, frame)
		}
	}
}

// waitWithTimeout wraps cond.Wait with a deadline. sync.Cond has no native
// timeout support, so a timer is armed to Broadcast the condition if
// nothing else does first; the timer is disarmed again as soon as Wait
// returns. It must be called with cond.L held, and returns with cond.L
// held, exactly like cond.Wait. The return value reports whether the wake
// happened before the timer fired -- the caller still re-checks its own
// deadline since a Broadcast from elsewhere can race with the timer.
func waitWithTimeout(cond *sync.Cond, d time.Duration) bool {
	timer := time.AfterFunc(d, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})

	cond.Wait()

	return timer.Stop()
}

// RecvFrontier returns the lowest frame number not yet seen from side s.
// The value is not carried on the wire: no message header has a frontier
// field, so peers never learn each other's frontiers.
func (q *Queue) RecvFrontier(s uint8) uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	side, ok := q.sides[s]
	if !ok {
		return 0
	}
	return side.recvFrontier
}

// Outbox returns the local side's (frame, input) pairs in
// [from, CurrentLocalFrame), for the caller to hand to the peer channels.
// This is the data half of spec.md §4.4's send(): "transmits all local
// frames in the window [acked_frontier, current_local_frame) to every
// peer" — the queue supplies the window, the session performs the I/O.
func (q *Queue) Outbox(from uint32) []OutboxEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := q.sides[q.localSide]
	entries := make([]OutboxEntry, 0, int(q.currentLocalFrame-from))
	for f := from; f < q.currentLocalFrame; f++ {
		if v, ok := s.inputs[f]; ok {
			entries = append(entries, OutboxEntry{Frame: f, Input: v})
		}
	}
	return entries
}

// OutboxEntry is one (frame, input) pair awaiting transmission.
type OutboxEntry struct {
	Frame uint32
	Input []byte
}

// GC drops entries below minFrontier on every side. It does not consult
// any peer's frontier; the caller picks the bound (the session passes a
// fixed trailing window behind the current local frame).
func (q *Queue) GC(minFrontier uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, s := range q.sides {
		for f := range s.inputs {
			if f < minFrontier {
				delete(s.inputs, f)
			}
		}
	}
}
