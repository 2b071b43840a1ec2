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
	"time"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/netplay/peer"
	"github.com/jetsetilly/gopher2600netplay/netplay/wire"
)

// pollInterval is how often WaitForInput wakes to re-drive sendOutbox
// while blocked, per spec.md §4.4's "while blocked, the caller
// periodically triggers send() so that the block participates in the
// retransmission schedule."
const pollInterval = 50 * time.Millisecond

// ConfirmDelay implements the host side of spec.md §4.3's input-delay
// negotiation: once every client has joined (state reaches Ready), the
// host calls this with the confirmed delay, broadcasting Delay(d) and its
// own Ready.
func (s *Session) ConfirmDelay(delay int) error {
	if delay < 1 || delay > 100 {
		return curated.Errorf("session: delay %d out of range [1,100]", delay)
	}

	s.mu.Lock()
	if s.cfg.ModeValue() != ModeHost {
		s.mu.Unlock()
		return curated.Errorf("session: ConfirmDelay is a host-only operation")
	}
	if s.state != Ready {
		s.mu.Unlock()
		return curated.Errorf("session: ConfirmDelay called outside Ready (state is %s)", s.state)
	}
	s.delay = delay
	channels := make([]*peer.Channel, 0, len(s.peersByAddr))
	for _, ch := range s.peersByAddr {
		channels = append(channels, ch)
	}
	s.mu.Unlock()

	payload := wire.DelayPayload{Delay: uint8(delay)}.Marshal()
	for _, ch := range channels {
		if err := ch.Send(s.ep, wire.Message{Type: wire.Delay, Payload: payload}); err != nil {
			return err
		}
	}

	for _, ch := range channels {
		_ = ch.Send(s.ep, wire.Message{Type: wire.Ready})
	}

	return nil
}

// PublishLocal implements spec.md §4.4's set(): publish the local side's
// input for the current local frame, advancing the local frame counter by
// one, then opportunistically drives an outbound send.
func (s *Session) PublishLocal(input []byte) error {
	q := s.frameQueue()
	if q == nil {
		return curated.Errorf(errNotRunning)
	}
	frame := q.CurrentLocalFrame()
	if err := q.Set(input); err != nil {
		return err
	}
	if s.replayWriter != nil {
		_ = s.replayWriter.Write(frame, s.localSide, input)
	}
	s.sendOutbox()
	return nil
}

// WaitForInput implements spec.md §4.4's get(): return the side's
// published input for frame, blocking (and periodically re-sending
// outstanding local frames) until it arrives, the session ends, or
// InputTimeout elapses.
func (s *Session) WaitForInput(side uint8, frame uint32) ([]byte, error) {
	q := s.frameQueue()
	if q == nil {
		return nil, curated.Errorf(errNotRunning)
	}

	deadline := time.Now().Add(InputTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.failInputTimeout(frame)
			return nil, curated.Errorf("session: input timeout waiting for side %d frame %d", side, frame)
		}

		wait := pollInterval
		if wait > remaining {
			wait = remaining
		}

		input, err := q.Get(side, frame, wait)
		if err == nil {
			return input, nil
		}

		if s.State().Terminal() {
			return nil, curated.Errorf("session: %s", s.exit)
		}

		s.sendOutbox()
	}
}

// sendOutbox implements spec.md §4.4's send(): resend the local frames in
// the trailing window [current_local_frame-gcWindowFrames,
// current_local_frame) to every peer, even frames already delivered (Input
// is idempotent, so re-sending is harmless and covers packet loss without
// per-frame acknowledgment). The window does not start at an acked
// frontier, and the session's rate limiter caps how many Inputs go out per
// call: frames are offered newest first and the rest of the window is not
// sent on that call.
func (s *Session) sendOutbox() {
	q := s.frameQueue()
	if q == nil {
		return
	}

	s.mu.Lock()
	localSide := s.localSide
	channels := make([]*peer.Channel, 0, len(s.peersByAddr))
	for _, ch := range s.peersByAddr {
		channels = append(channels, ch)
	}
	s.mu.Unlock()

	current := q.CurrentLocalFrame()
	from := uint32(0)
	if current > gcWindowFrames {
		from = current - gcWindowFrames
	}

	entries := q.Outbox(from)
	if len(entries) == 0 {
		return
	}

	for _, ch := range channels {
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			if !s.limiter.Allow() {
				break
			}
			m := wire.Message{
				Type:    wire.Input,
				Frame:   e.Frame,
				Payload: wire.InputPayload{Side: localSide, Input: e.Input}.Marshal(),
			}
			_ = ch.Send(s.ep, m)
		}
	}

	if current > gcWindowFrames {
		q.GC(current - gcWindowFrames)
	}
}
