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

package peer

import (
	"net/netip"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/logger"
	"github.com/jetsetilly/gopher2600netplay/netplay/endpoint"
	"github.com/jetsetilly/gopher2600netplay/netplay/wire"
)

// RetransmitInitial is the first retry interval for a reliable message.
const RetransmitInitial = 50 * time.Millisecond

// RetransmitCap is the maximum backoff interval for a reliable message.
const RetransmitCap = 1 * time.Second

// KeepAliveInterval is how long the channel may stay silent before a Ping
// is due.
const KeepAliveInterval = 500 * time.Millisecond

// TimeoutInterval is how long a peer may go without sending anything
// before it is declared lost.
const TimeoutInterval = 10 * time.Second

// ErrTimedOut is the curated pattern reported when TimedOut fires.
const ErrTimedOut = "peer: timed out: no traffic for %s"

// pending is a reliable message awaiting acknowledgment.
type pending struct {
	raw       []byte
	seq       uint32
	sentAt    time.Time
	nextRetry time.Time
	backoff   time.Duration
}

// Channel is the reliability layer for a single remote peer: sequencing,
// acknowledgment, retransmission, duplicate suppression and keep-alive. It
// does no socket I/O of its own — Send/RetransmitDue are handed an
// endpoint.Endpoint to write through.
type Channel struct {
	addr     netip.AddrPort
	username string

	mu         sync.Mutex
	sendSeq    uint32
	seen       map[uint32]struct{}
	retransmit map[uint32]*pending
	lastSent   time.Time
	lastRecv   time.Time
	stats      Stats

	pingNonce   [16]byte
	pingPending bool
}

// New creates a Channel addressing the peer at addr, known locally by
// username (the name supplied in their Join/Accept).
func New(addr netip.AddrPort, username string) *Channel {
	now := time.Now()
	return &Channel{
		addr:       addr,
		username:   username,
		seen:       make(map[uint32]struct{}),
		retransmit: make(map[uint32]*pending),
		lastSent:   now,
		lastRecv:   now,
	}
}

// Addr returns the peer's network address.
func (c *Channel) Addr() netip.AddrPort {
	return c.addr
}

// Username returns the peer's display name.
func (c *Channel) Username() string {
	return c.username
}

// Stats returns a snapshot of the channel's counters.
func (c *Channel) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Send assigns the message a fresh sequence number, hands it to e, and (for
// Reliable types) registers it for retransmission until acked. Ack, Input,
// Reject, Ping and Pong are fire-and-forget: they are sent once and not
// tracked.
func (c *Channel) Send(e *endpoint.Endpoint, m wire.Message) error {
	c.mu.Lock()
	c.sendSeq++
	m.Seq = c.sendSeq
	c.mu.Unlock()

	raw, err := wire.Encode(m)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.stats.Sent++
	c.lastSent = time.Now()
	if m.Type.Reliable() {
		c.retransmit[m.Seq] = &pending{
			raw:       raw,
			seq:       m.Seq,
			sentAt:    c.lastSent,
			nextRetry: c.lastSent.Add(RetransmitInitial),
			backoff:   RetransmitInitial,
		}
	}
	c.mu.Unlock()

	return e.Send(c.addr, raw)
}

// HandleIncoming decodes a raw datagram from this peer, updates lastRecv,
// and reports whether the message is a duplicate that should be discarded.
// Dedup only applies to Reliable message types: Input is deduplicated at
// the frame-queue layer by (side, frame), and Ack/Ping/Pong tolerate
// re-delivery by construction.
func (c *Channel) HandleIncoming(raw []byte) (wire.Message, bool, error) {
	m, err := wire.Decode(raw)
	if err != nil {
		return wire.Message{}, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastRecv = time.Now()

	if m.Type == wire.Ack {
		return m, false, nil
	}

	if !m.Type.Reliable() {
		return m, false, nil
	}

	if _, ok := c.seen[m.Seq]; ok {
		c.stats.DuplicateDropped++
		return m, true, nil
	}
	c.seen[m.Seq] = struct{}{}

	return m, false, nil
}

// HandleAck applies an Ack carrying ackedSeq, cancelling retransmission of
// the matching pending message.
func (c *Channel) HandleAck(ackedSeq uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.retransmit[ackedSeq]
	if !ok {
		return
	}
	delete(c.retransmit, ackedSeq)
	c.stats.Acked++
	c.stats.LastRTT = time.Since(p.sentAt)
}

// BuildAck constructs the Ack message acknowledging seq, ready to pass to
// Send. Ack messages are not themselves tracked for retransmission.
func (c *Channel) BuildAck(seq uint32) wire.Message {
	return wire.Message{
		Type:    wire.Ack,
		Payload: wire.AckPayload{AckedSeq: seq}.Marshal(),
	}
}

// BuildPing constructs a fresh keep-alive Ping carrying a random nonce and
// records it, so the matching Pong can be verified with VerifyPong rather
// than simply taken on trust.
func (c *Channel) BuildPing() wire.Message {
	id := uuid.New()

	c.mu.Lock()
	copy(c.pingNonce[:], id[:])
	c.pingPending = true
	nonce := c.pingNonce
	c.mu.Unlock()

	return wire.Message{Type: wire.Ping, Payload: wire.PingPongPayload{Nonce: nonce}.Marshal()}
}

// VerifyPong reports whether nonce matches the most recently sent Ping's,
// clearing the pending flag so a duplicate or stray Pong cannot verify
// twice.
func (c *Channel) VerifyPong(nonce [16]byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pingPending || c.pingNonce != nonce {
		return false
	}
	c.pingPending = false
	return true
}

// RetransmitDue resends any pending reliable message whose backoff has
// elapsed, doubling its backoff (capped at RetransmitCap) for next time.
func (c *Channel) RetransmitDue(e *endpoint.Endpoint, now time.Time) error {
	c.mu.Lock()
	due := make([]*pending, 0)
	for _, p := range c.retransmit {
		if !now.Before(p.nextRetry) {
			due = append(due, p)
		}
	}
	c.mu.Unlock()

	for _, p := range due {
		if err := e.Send(c.addr, p.raw); err != nil {
			return err
		}

		c.mu.Lock()
		c.stats.Retried++
		p.backoff *= 2
		if p.backoff > RetransmitCap {
			p.backoff = RetransmitCap
		}
		p.nextRetry = now.Add(p.backoff)
		c.mu.Unlock()

		logger.Logf(logger.Allow, "peer", "retransmitted seq %d to %s", p.seq, c.addr)
	}

	return nil
}

// PendingCount reports how many reliable messages are awaiting
// acknowledgment, useful for the "drain before Ended" shutdown path.
func (c *Channel) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.retransmit)
}

// NeedsKeepAlive reports whether nothing has been sent to this peer for
// KeepAliveInterval, meaning a Ping is due.
func (c *Channel) NeedsKeepAlive(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSent) >= KeepAliveInterval
}

// TimedOut reports whether this peer has been silent for TimeoutInterval,
// meaning the session should abort with PeerTimeout.
func (c *Channel) TimedOut(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastRecv) >= TimeoutInterval
}

// Err wraps TimedOut's condition as a curated error, for callers that want
// to propagate it directly.
func (c *Channel) Err() error {
	return curated.Errorf(ErrTimedOut, TimeoutInterval)
}
