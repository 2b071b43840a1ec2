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
	"bytes"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/emulation"
	"github.com/jetsetilly/gopher2600netplay/logger"
	"github.com/jetsetilly/gopher2600netplay/netplay/endpoint"
	"github.com/jetsetilly/gopher2600netplay/netplay/framequeue"
	"github.com/jetsetilly/gopher2600netplay/netplay/peer"
	"github.com/jetsetilly/gopher2600netplay/netplay/wire"
	"github.com/jetsetilly/gopher2600netplay/notifications"
)

func wireEndSession() wire.Message {
	return wire.Message{Type: wire.EndSession}
}

func wireChat(text string) wire.Message {
	return wire.Message{Type: wire.Chat, Payload: wire.ChatPayload{Text: text}.Marshal()}
}

// Open binds the session's endpoint and begins either the host's
// Advertising protocol or the client's Handshaking protocol, per the
// transition diagram of spec.md §4.3. It returns once the endpoint is
// bound (or BindFailed is determined); the handshake itself continues on
// background goroutines and is observed via Wait/State.
func (s *Session) Open() error {
	s.setState(Binding)

	port := s.cfg.LocalBindPort.Get().(int)
	if err := s.ep.Bind(port); err != nil {
		s.fail(BindFailed, err.Error())
		return err
	}

	s.syncState = s.vcs.CaptureSyncState()
	if err := s.vcs.ResetToSafeDefaults(); err != nil {
		s.fail(BindFailed, err.Error())
		return err
	}

	go s.recvLoop()

	switch s.cfg.ModeValue() {
	case ModeHost:
		s.localSide = 0
		s.mu.Lock()
		s.usernames[0] = s.localUsername
		s.mu.Unlock()
		s.numPlayers = s.cfg.NumPlayers.Get().(int)
		s.setState(Advertising)
	case ModeConnect, ModeObserve:
		go s.connectLoop()
	}

	return nil
}

// connectLoop implements the client protocol of spec.md §4.3: send Join,
// await Accept within JoinTimeout.
func (s *Session) connectLoop() {
	s.setState(Handshaking)

	addr, err := netip.ParseAddrPort(s.cfg.PeerAddress.String() + ":" + s.cfg.PeerPort.String())
	if err != nil {
		s.fail(JoinTimeoutExit, err.Error())
		return
	}

	ch := peer.New(addr, s.localUsername)
	s.mu.Lock()
	s.peersByAddr[addr] = ch
	s.mu.Unlock()

	join := wire.Message{
		Type:    wire.Join,
		Payload: wire.JoinPayload{Username: s.localUsername, SyncState: s.syncState}.Marshal(),
	}
	if err := ch.Send(s.ep, join); err != nil {
		s.fail(JoinTimeoutExit, err.Error())
		return
	}

	deadline := time.Now().Add(JoinTimeout)
	s.cond.L.Lock()
	for s.state == Handshaking && time.Now().Before(deadline) {
		s.waitUntil(deadline)
	}
	state := s.state
	s.cond.L.Unlock()

	if state == Handshaking {
		s.fail(JoinTimeoutExit, "no Accept received within "+JoinTimeout.String())
	}
}

// waitUntil is cond.Wait bounded by deadline; it must be called with
// s.cond.L held and returns with it held. Mirrors
// framequeue.waitWithTimeout's timer-broadcast approach since sync.Cond
// has no native deadline support.
func (s *Session) waitUntil(deadline time.Time) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return
	}
	timer := time.AfterFunc(remaining, func() {
		s.cond.L.Lock()
		s.cond.Broadcast()
		s.cond.L.Unlock()
	})
	s.cond.Wait()
	timer.Stop()
}

// recvLoop is the network receive thread of spec.md §5: owns the
// endpoint's Recv, dispatches incoming messages, and drives the internal
// heartbeat that services retransmission and keep-alive.
func (s *Session) recvLoop() {
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		addr, raw, err := s.ep.Recv(heartbeat)
		if err != nil {
			if curated.Is(err, endpoint.ErrClosed) {
				return
			}
			if !curated.Is(err, endpoint.ErrRecvTimeout) {
				logger.Logf(logger.Allow, "session", "recv error: %v", err)
			}
			s.tick()
			continue
		}

		s.dispatch(addr, raw)
		s.tick()
	}
}

// tick services retransmission, keep-alive and peer-timeout for every
// known peer, per spec.md §4.2/§5.
func (s *Session) tick() {
	s.mu.Lock()
	state := s.state
	peers := make([]*peer.Channel, 0, len(s.peersByAddr))
	for _, ch := range s.peersByAddr {
		peers = append(peers, ch)
	}
	s.mu.Unlock()

	if state.Terminal() {
		return
	}

	now := time.Now()
	for _, ch := range peers {
		if ch.TimedOut(now) {
			s.fail(PeerTimeout, ch.Err().Error())
			return
		}
		if ch.NeedsKeepAlive(now) {
			_ = ch.Send(s.ep, ch.BuildPing())
		}
		if err := ch.RetransmitDue(s.ep, now); err != nil {
			logger.Logf(logger.Allow, "session", "retransmit error: %v", err)
		}
	}

	if state == Running {
		s.sendOutbox()
	}
}

// dispatch decodes one datagram and routes it by message type. Unknown
// senders are only meaningful as Join candidates while the host is
// Advertising; everything else requires an already-registered peer
// channel.
func (s *Session) dispatch(addr netip.AddrPort, raw []byte) {
	s.mu.Lock()
	ch, known := s.peersByAddr[addr]
	state := s.state
	s.mu.Unlock()

	if !known {
		m, err := wire.Decode(raw)
		if err != nil {
			logger.Logf(logger.Allow, "session", "malformed datagram from %s: %v", addr, err)
			return
		}
		if m.Type == wire.Join && state == Advertising {
			s.handleJoin(addr, m)
			return
		}
		logger.Logf(logger.Allow, "session", "datagram from unknown peer %s, dropped", addr)
		return
	}

	m, dup, err := ch.HandleIncoming(raw)
	if err != nil {
		logger.Logf(logger.Allow, "session", "malformed datagram from %s: %v", addr, err)
		return
	}

	if m.Type.Reliable() {
		_ = ch.Send(s.ep, ch.BuildAck(m.Seq))
	}
	if dup {
		return
	}

	switch m.Type {
	case wire.Accept:
		s.handleAccept(addr, m)
	case wire.Reject:
		s.handleReject(addr, m)
	case wire.Delay:
		s.handleDelay(m)
	case wire.Ready:
		s.handleReady(addr)
	case wire.Input:
		s.handleInput(m)
	case wire.Ack:
		if p, err := wire.UnmarshalAck(m.Payload); err == nil {
			ch.HandleAck(p.AckedSeq)
		}
	case wire.Chat:
		s.handleChat(addr, m)
	case wire.EndSession:
		s.handleEndSession(addr)
	case wire.Ping:
		_ = ch.Send(s.ep, wire.Message{Type: wire.Pong, Payload: m.Payload})
	case wire.Pong:
		if p, err := wire.UnmarshalPingPong(m.Payload); err == nil {
			if !ch.VerifyPong(p.Nonce) {
				logger.Logf(logger.Allow, "session", "pong from %s carried an unexpected nonce", addr)
			}
		}
	}
}

// handleJoin implements the host side of spec.md §4.3: compare
// snapshots, assign a side on match, broadcast an updated Accept.
func (s *Session) handleJoin(addr netip.AddrPort, m wire.Message) {
	p, err := wire.UnmarshalJoin(m.Payload)
	if err != nil {
		logger.Logf(logger.Allow, "session", "malformed Join from %s: %v", addr, err)
		return
	}

	s.mu.Lock()
	acceptedCount := len(s.sideOfAddr)
	numPlayers := s.numPlayers
	s.mu.Unlock()

	if acceptedCount+1 >= numPlayers {
		s.sendReject(addr, wire.RejectSessionFull)
		return
	}

	if reason, ok := compatibleSyncState(s.syncState, p.SyncState); !ok {
		s.sendReject(addr, reason)
		return
	}

	side := uint8(acceptedCount + 1)

	ch := peer.New(addr, p.Username)
	s.mu.Lock()
	s.peersByAddr[addr] = ch
	s.sideOfAddr[addr] = side
	s.addrOfSide[side] = addr
	s.usernames[side] = p.Username
	s.mu.Unlock()

	s.broadcastAccept()

	if s.notify != nil {
		_ = s.notify.Notify(notifications.NoticeUserlist, strings.Join(s.userlist(), ","))
	}

	s.mu.Lock()
	accepted := len(s.sideOfAddr)
	needed := s.numPlayers - 1
	s.mu.Unlock()

	if accepted == needed {
		s.setState(Ready)
		if s.notify != nil {
			_ = s.notify.Notify(notifications.NoticeStatus, "all players joined, waiting for delay confirmation")
		}
	}
}

func (s *Session) sendReject(addr netip.AddrPort, reason wire.RejectReason) {
	raw, err := wire.Encode(wire.Message{Type: wire.Reject, Payload: wire.RejectPayload{Reason: reason}.Marshal()})
	if err != nil {
		return
	}
	_ = s.ep.Send(addr, raw)
}

// compatibleSyncState implements spec.md §3's compatibility predicate over
// the fixed layout named by emulation.VCS.CaptureSyncState: BIOS identifier
// and behaviour toggles are fixed-width and compared in full, the trailing
// program/disc identifier is variable-length and compared up to its first
// zero byte. The three causes are distinguished so handleJoin can reject
// with the specific reason spec.md §8's boundary scenarios name, rather
// than collapsing every mismatch into RejectProgramMismatch.
func compatibleSyncState(local, remote []byte) (wire.RejectReason, bool) {
	localBIOS, localToggle, localProgram := splitSyncState(local)
	remoteBIOS, remoteToggle, remoteProgram := splitSyncState(remote)

	if !bytes.Equal(localBIOS, remoteBIOS) {
		return wire.RejectBIOSMismatch, false
	}
	if !bytes.Equal(localToggle, remoteToggle) {
		return wire.RejectBehaviorToggleMismatch, false
	}
	if !bytes.Equal(truncateAtZero(localProgram), truncateAtZero(remoteProgram)) {
		return wire.RejectProgramMismatch, false
	}
	return wire.RejectUnknown, true
}

// splitSyncState decomposes b per emulation.VCS.CaptureSyncState's fixed
// layout. Blobs shorter than the fixed region are handled gracefully
// (tests and stand-in VCS implementations needn't pad), with whatever is
// missing simply compared as empty.
func splitSyncState(b []byte) (bios, toggle, program []byte) {
	if len(b) <= emulation.SyncStateBIOSLen {
		return b, nil, nil
	}
	bios = b[:emulation.SyncStateBIOSLen]
	rest := b[emulation.SyncStateBIOSLen:]
	if len(rest) <= emulation.SyncStateToggleLen {
		return bios, rest, nil
	}
	return bios, rest[:emulation.SyncStateToggleLen], rest[emulation.SyncStateToggleLen:]
}

func truncateAtZero(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// broadcastAccept sends every known peer the current Accept payload:
// peer list in join order, num_players, and the host's sync-state.
func (s *Session) broadcastAccept() {
	s.mu.Lock()
	peers := make([]string, s.numPlayers)
	peers[0] = s.localUsername
	for side, name := range s.usernames {
		if int(side) < len(peers) {
			peers[side] = name
		}
	}
	payload := wire.AcceptPayload{Peers: peers, NumPlayers: uint8(s.numPlayers), SyncState: s.syncState}.Marshal()
	channels := make([]*peer.Channel, 0, len(s.peersByAddr))
	for _, ch := range s.peersByAddr {
		channels = append(channels, ch)
	}
	s.mu.Unlock()

	for _, ch := range channels {
		_ = ch.Send(s.ep, wire.Message{Type: wire.Accept, Payload: payload})
	}
}

// handleAccept implements the client side of spec.md §4.3's Ready
// transition trigger: record the assigned side and peer list, move to
// Ready.
func (s *Session) handleAccept(addr netip.AddrPort, m wire.Message) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state != Handshaking && state != Ready {
		return
	}

	p, err := wire.UnmarshalAccept(m.Payload)
	if err != nil {
		logger.Logf(logger.Allow, "session", "malformed Accept from %s: %v", addr, err)
		return
	}

	s.mu.Lock()
	s.numPlayers = int(p.NumPlayers)
	for side, name := range p.Peers {
		s.usernames[uint8(side)] = name
	}
	if s.localSide == 0 {
		for side, name := range p.Peers {
			if name == s.localUsername && side != 0 {
				s.localSide = uint8(side)
				break
			}
		}
	}
	s.addrOfSide[0] = addr
	s.sideOfAddr[addr] = 0
	s.mu.Unlock()

	if state == Handshaking {
		s.setState(Ready)
	}

	if s.notify != nil {
		_ = s.notify.Notify(notifications.NoticeUserlist, strings.Join(s.userlist(), ","))
	}
}

// handleReject surfaces spec.md §8 boundary scenario 2: the client
// terminates with SyncMismatch and a human-readable reason.
func (s *Session) handleReject(addr netip.AddrPort, m wire.Message) {
	p, err := wire.UnmarshalReject(m.Payload)
	if err != nil {
		logger.Logf(logger.Allow, "session", "malformed Reject from %s: %v", addr, err)
		return
	}
	if p.Reason == wire.RejectSessionFull || p.Reason == wire.RejectSessionNotAdvertising {
		s.fail(PeerError, p.Reason.String())
		return
	}
	s.fail(SyncMismatch, p.Reason.String())
}

// handleDelay applies spec.md §4.3's input-delay negotiation, honoring
// the appliedDelaySeq ordering described in SPEC_FULL.md's supplemented
// graceful-renegotiation feature: a Delay whose seq is not newer than the
// last applied one is ignored outright.
func (s *Session) handleDelay(m wire.Message) {
	s.mu.Lock()
	if m.Seq <= s.appliedDelaySeq && s.appliedDelaySeq != 0 {
		s.mu.Unlock()
		return
	}
	p, err := wire.UnmarshalDelay(m.Payload)
	if err != nil {
		s.mu.Unlock()
		return
	}
	s.delay = int(p.Delay)
	s.appliedDelaySeq = m.Seq
	s.mu.Unlock()

	logger.Logf(logger.Allow, "session", "applied delay %d (seq %d)", p.Delay, m.Seq)

	if s.cfg.ModeValue() != ModeHost {
		ch := s.peerChannel(0)
		if ch != nil {
			_ = ch.Send(s.ep, wire.Message{Type: wire.Ready})
		}
	}
}

// handleReady counts toward the "all peers Ready" barrier. The host
// transitions to Running once every accepted side has sent Ready and the
// queue can be primed; a client transitions once it sees the host's Ready
// after having sent its own.
func (s *Session) handleReady(addr netip.AddrPort) {
	s.mu.Lock()
	side, ok := s.sideOfAddr[addr]
	if ok {
		s.acceptedBy[side] = true
	}
	state := s.state
	numPlayers := s.numPlayers
	delay := s.delay
	ready := len(s.acceptedBy)
	localSide := s.localSide
	s.mu.Unlock()

	if state != Ready {
		return
	}

	if s.cfg.ModeValue() == ModeHost {
		if ready == numPlayers-1 {
			s.startRunning(localSide, numPlayers, delay)
		}
		return
	}

	// client: the host's Ready (side 0) is the transition trigger
	if ok && side == 0 {
		s.startRunning(localSide, numPlayers, delay)
	}
}

func (s *Session) startRunning(localSide uint8, numPlayers, delay int) {
	q := framequeue.New(localSide, numPlayers, InputWidth)
	q.Start(delay)
	s.setFrameQueue(q)

	if s.replayWriter != nil {
		_ = s.replayWriter.SetSyncState(s.syncState)
	}

	s.setState(Running)

	if s.notify != nil {
		_ = s.notify.Notify(notifications.NoticeConnectionEstablished, strconv.Itoa(delay))
	}
}

// handleInput records a remote side's sampled input for a frame.
func (s *Session) handleInput(m wire.Message) {
	p, err := wire.UnmarshalInput(m.Payload)
	if err != nil {
		logger.Logf(logger.Allow, "session", "malformed Input: %v", err)
		return
	}
	q := s.frameQueue()
	if q == nil {
		return
	}
	q.PublishRemote(p.Side, m.Frame, p.Input)
}

func (s *Session) handleChat(addr netip.AddrPort, m wire.Message) {
	p, err := wire.UnmarshalChat(m.Payload)
	if err != nil {
		return
	}
	s.mu.Lock()
	side, ok := s.sideOfAddr[addr]
	name := s.usernames[side]
	s.mu.Unlock()
	if !ok {
		name = addr.String()
	}
	if s.notify != nil {
		_ = s.notify.Notify(notifications.NoticeChat, name+": "+p.Text)
	}
}

// handleEndSession implements spec.md §4.3's "any --EndSession--> Ended".
func (s *Session) handleEndSession(addr netip.AddrPort) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state.Terminal() {
		return
	}
	logger.Logf(logger.Allow, "session", "EndSession received from %s", addr)
	s.fail(Completed, "")
}

func (s *Session) peerChannel(side uint8) *peer.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.addrOfSide[side]
	if !ok {
		return nil
	}
	return s.peersByAddr[addr]
}
