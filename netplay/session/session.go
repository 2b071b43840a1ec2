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
	"io"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/emulation"
	"github.com/jetsetilly/gopher2600netplay/logger"
	"github.com/jetsetilly/gopher2600netplay/netplay/endpoint"
	"github.com/jetsetilly/gopher2600netplay/netplay/framequeue"
	"github.com/jetsetilly/gopher2600netplay/netplay/peer"
	"github.com/jetsetilly/gopher2600netplay/netplay/replay"
	"github.com/jetsetilly/gopher2600netplay/notifications"
)

// InputWidth is the number of synchronized controller bytes carried per
// frame, per spec.md §3 ("6 when analog sticks are included, 2
// otherwise"). The session always negotiates with the wider shape; a
// narrower emulator simply leaves the trailing bytes at their neutral
// value.
const InputWidth = 6

// JoinTimeout is how long a client waits for Accept before giving up, per
// spec.md §4.3's stated default.
const JoinTimeout = 10 * time.Second

// InputTimeout is how long WaitForInput blocks before the session
// considers the stall fatal, per spec.md §5. spec.md §9 flags this as a
// candidate for configurability; ToDo: left fixed here, see DESIGN.md.
const InputTimeout = 10 * time.Second

// heartbeat is the receive-thread's internal retransmit/keepalive tick,
// per spec.md §5 ("an internal 17 ms heartbeat on the receive side").
const heartbeat = 17 * time.Millisecond

// gcWindowFrames bounds how many trailing frames, counted back from the
// current local frame, the frame queue retains on every side and the
// outbox resends, in lieu of the full recv_frontier ack-piggyback
// spec.md §4.4 describes (see DESIGN.md for why this module approximates
// it this way).
const gcWindowFrames = 256

const (
	errBindFailed  = "session: %v"
	errNotRunning  = "session: not running"
	errUnknownSide = "session: no peer assigned to side %d"
)

// Session is the netplay lobby and frame-exchange state machine of
// spec.md §4.3/§4.4. Exported methods are safe for concurrent use: the
// hook adapter calls PublishLocal/WaitForInput from the emulator thread
// while the receive loop runs on its own goroutine.
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	cfg    *Config
	vcs    emulation.VCS
	notify notifications.Notify

	ep *endpoint.Endpoint

	state State
	exit  ExitReason

	localUsername string
	localSide     uint8
	numPlayers    int
	usernames     map[uint8]string

	syncState []byte
	delay     int

	appliedDelaySeq uint32
	lastDelaySeq    uint32

	peersByAddr map[netip.AddrPort]*peer.Channel
	sideOfAddr  map[netip.AddrPort]uint8
	addrOfSide  map[uint8]netip.AddrPort
	acceptedBy  map[uint8]bool // host only: sides that have sent Ready

	queue *framequeue.Queue

	limiter *rate.Limiter

	replayWriter *replay.Writer

	closed  bool
	closeCh chan struct{}
}

// New creates a Session from cfg, which must already pass Validate. vcs is
// the emulator collaborator (spec.md §6); notify receives the session's
// lifecycle callbacks. replayDest is optional: when cfg.SaveReplay is set
// and replayDest is non-nil, every local frame published through
// PublishLocal is streamed to it via the replay package. Inputs received
// from peers are not recorded.
func New(cfg *Config, vcs emulation.VCS, notify notifications.Notify, replayDest io.Writer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:         cfg,
		vcs:         vcs,
		notify:      notify,
		ep:          endpoint.New(),
		state:       None,
		usernames:   make(map[uint8]string),
		peersByAddr: make(map[netip.AddrPort]*peer.Channel),
		sideOfAddr:  make(map[netip.AddrPort]uint8),
		addrOfSide:  make(map[uint8]netip.AddrPort),
		acceptedBy:  make(map[uint8]bool),
		limiter:     rate.NewLimiter(rate.Limit(100), 20),
		closeCh:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)

	s.localUsername = cfg.Username.String()
	if cfg.SaveReplay.Get().(bool) && replayDest != nil {
		s.replayWriter = replay.NewWriter(replayDest)
	}

	return s, nil
}

// SetFaultInjection installs latency/loss fault injection on the session's
// endpoint, per the testing mode of spec.md §4.1. Must be called before
// Open.
func (s *Session) SetFaultInjection(f *endpoint.FaultInjection) {
	s.ep.SetFaultInjection(f)
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Delay returns the negotiated input delay. Meaningless before Running.
func (s *Session) Delay() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// LocalSide returns the side index assigned to this instance. Meaningless
// before Ready.
func (s *Session) LocalSide() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localSide
}

// BoundPort returns the local UDP port the session is listening on, useful
// after a Connect/Observe session requested an ephemeral port
// (local_bind_port 0; Host mode requires an explicit port). Meaningless
// before Open.
func (s *Session) BoundPort() int {
	return s.ep.LocalPort()
}

// NumPlayers returns the number of sides participating in the session.
// Meaningless before Ready.
func (s *Session) NumPlayers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numPlayers
}

// frameQueue returns the session's framequeue.Queue, or nil before Running
// has been reached. Guarded by s.mu because it is written once by the
// receive thread (startRunning) and read from the emulator thread
// (PublishLocal/WaitForInput) for the rest of the session's life.
func (s *Session) frameQueue() *framequeue.Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue
}

func (s *Session) setFrameQueue(q *framequeue.Queue) {
	s.mu.Lock()
	s.queue = q
	s.mu.Unlock()
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.cond.L.Lock()
	s.cond.Broadcast()
	s.cond.L.Unlock()
	logger.Logf(logger.Allow, "session", "state -> %s", next)
}

// fail transitions the session directly to Ended carrying reason, per
// spec.md §7 ("once Running, any fatal error transitions directly to
// Ended with diagnostics"). It is also used for pre-Running failures that
// are themselves terminal (BindFailed, JoinTimeout, SyncMismatch).
func (s *Session) fail(kind ExitKind, detail string) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.exit = ExitReason{Kind: kind, Reason: detail}
	s.state = Ended
	s.mu.Unlock()

	s.cond.L.Lock()
	s.cond.Broadcast()
	s.cond.L.Unlock()

	if q := s.frameQueue(); q != nil {
		q.Cancel()
	}

	logger.Logf(logger.Allow, "session", "ended: %s", s.exit)
	if s.notify != nil {
		_ = s.notify.Notify(notifications.NoticeSessionEnded, s.exit.String())
	}
}

func (s *Session) failInputTimeout(frame uint32) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.exit = ExitReason{Kind: InputTimeoutExit, Frame: frame}
	s.state = Ended
	s.mu.Unlock()

	s.cond.L.Lock()
	s.cond.Broadcast()
	s.cond.L.Unlock()

	if q := s.frameQueue(); q != nil {
		q.Cancel()
	}

	logger.Logf(logger.Allow, "session", "ended: %s", s.exit)
	if s.notify != nil {
		_ = s.notify.Notify(notifications.NoticeSessionEnded, s.exit.String())
	}
}

// Wait blocks until the session reaches a terminal state and returns the
// reason.
func (s *Session) Wait() ExitReason {
	s.cond.L.Lock()
	for !s.state.Terminal() {
		s.cond.Wait()
	}
	defer s.cond.L.Unlock()
	return s.exit
}

// Cancel implements the "any (pre-Ready) --user cancel--> Cancelled" and
// the Running-time graceful shutdown of spec.md §4.3/§5: pre-Ready it
// moves straight to Cancelled; during Running it broadcasts EndSession and
// waits (briefly) for acks before settling on Ended.
func (s *Session) Cancel() {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if state.Terminal() {
		return
	}

	if state != Running {
		s.mu.Lock()
		s.exit = ExitReason{Kind: CancelledByUser}
		s.state = Cancelled
		s.mu.Unlock()
		s.cond.L.Lock()
		s.cond.Broadcast()
		s.cond.L.Unlock()
		if s.notify != nil {
			_ = s.notify.Notify(notifications.NoticeSessionEnded, s.exit.String())
		}
		return
	}

	s.endSession(CancelledByUser, "")
}

// endSession implements the best-effort EndSession broadcast of spec.md
// §5: retransmitted up to 4*delay times or until every peer acks,
// whichever comes first, then settles in Ended.
func (s *Session) endSession(kind ExitKind, reason string) {
	s.mu.Lock()
	peers := make([]*peer.Channel, 0, len(s.peersByAddr))
	for _, ch := range s.peersByAddr {
		peers = append(peers, ch)
	}
	s.mu.Unlock()

	for _, ch := range peers {
		if err := ch.Send(s.ep, wireEndSession()); err != nil {
			logger.Logf(logger.Allow, "session", "endSession send failed: %v", err)
		}
	}

	drain := time.Duration(4*s.delay) * heartbeat
	if drain < 500*time.Millisecond {
		drain = 500 * time.Millisecond
	}
	deadline := time.Now().Add(drain)
	for time.Now().Before(deadline) {
		pending := 0
		for _, ch := range peers {
			pending += ch.PendingCount()
		}
		if pending == 0 {
			break
		}
		time.Sleep(heartbeat)
		for _, ch := range peers {
			_ = ch.RetransmitDue(s.ep, time.Now())
		}
	}

	s.fail(kind, reason)
}

// Close releases the session's resources. Idempotent: calling Close more
// than once, or before Open, is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.closeCh)
	s.mu.Unlock()

	if q := s.frameQueue(); q != nil {
		q.Cancel()
	}
	if s.replayWriter != nil {
		_ = s.replayWriter.Close()
	}
	return s.ep.Close()
}

// Chat broadcasts a UTF-8 chat message to every connected peer.
func (s *Session) Chat(text string) error {
	s.mu.Lock()
	peers := make([]*peer.Channel, 0, len(s.peersByAddr))
	for _, ch := range s.peersByAddr {
		peers = append(peers, ch)
	}
	s.mu.Unlock()

	for _, ch := range peers {
		if err := ch.Send(s.ep, wireChat(text)); err != nil {
			return curated.Errorf(errBindFailed, err)
		}
	}
	return nil
}

// userlist returns the current username-by-side map as a snapshot slice,
// side 0 first, for NoticeUserlist.
func (s *Session) userlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]string, 0, len(s.usernames))
	for side := uint8(0); int(side) < s.numPlayers; side++ {
		if name, ok := s.usernames[side]; ok {
			list = append(list, name)
		}
	}
	return list
}
