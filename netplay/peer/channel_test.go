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

package peer_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/jetsetilly/gopher2600netplay/netplay/endpoint"
	"github.com/jetsetilly/gopher2600netplay/netplay/peer"
	"github.com/jetsetilly/gopher2600netplay/netplay/wire"
	"github.com/jetsetilly/gopher2600netplay/test"
)

func newLinkedEndpoints(t *testing.T) (a, b *endpoint.Endpoint, bAddr netip.AddrPort) {
	t.Helper()
	a = endpoint.New()
	test.DemandSuccess(t, a.Bind(0))
	b = endpoint.New()
	test.DemandSuccess(t, b.Bind(0))
	bAddr = netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), uint16(b.LocalPort()))
	return a, b, bAddr
}

func TestReliableSendIsTrackedUntilAcked(t *testing.T) {
	a, b, bAddr := newLinkedEndpoints(t)
	defer a.Close()
	defer b.Close()

	ch := peer.New(bAddr, "bob")
	test.DemandSuccess(t, ch.Send(a, wire.Message{Type: wire.Ready}))

	test.DemandEquality(t, ch.PendingCount(), 1)

	_, raw, err := b.Recv(time.Second)
	test.DemandSuccess(t, err)
	m, err := wire.Decode(raw)
	test.DemandSuccess(t, err)

	ch.HandleAck(m.Seq)
	test.DemandEquality(t, ch.PendingCount(), 0)
	test.DemandEquality(t, ch.Stats().Acked, 1)
}

func TestUnreliableSendIsNotTracked(t *testing.T) {
	a, b, bAddr := newLinkedEndpoints(t)
	defer a.Close()
	defer b.Close()

	ch := peer.New(bAddr, "bob")
	test.DemandSuccess(t, ch.Send(a, ch.BuildPing()))
	test.DemandEquality(t, ch.PendingCount(), 0)
}

func TestBuildPingVerifyPongRoundTrip(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")

	ping := ch.BuildPing()
	p, err := wire.UnmarshalPingPong(ping.Payload)
	test.DemandSuccess(t, err)

	if !ch.VerifyPong(p.Nonce) {
		t.Fatalf("expected the echoed nonce to verify")
	}
}

func TestVerifyPongRejectsUnexpectedNonce(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")
	ch.BuildPing()

	var wrong [16]byte
	wrong[0] = 0xff
	if ch.VerifyPong(wrong) {
		t.Fatalf("expected a mismatched nonce not to verify")
	}
}

func TestVerifyPongRejectsWithoutPriorPing(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")
	var nonce [16]byte
	if ch.VerifyPong(nonce) {
		t.Fatalf("expected VerifyPong to fail when no Ping was ever sent")
	}
}

func TestVerifyPongConsumesNonceOnce(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")
	ping := ch.BuildPing()
	p, err := wire.UnmarshalPingPong(ping.Payload)
	test.DemandSuccess(t, err)

	if !ch.VerifyPong(p.Nonce) {
		t.Fatalf("expected first verification to succeed")
	}
	if ch.VerifyPong(p.Nonce) {
		t.Fatalf("expected a duplicate Pong not to verify a second time")
	}
}

func TestDuplicateReliableMessageIsDetected(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")

	raw, err := wire.Encode(wire.Message{Type: wire.Ready, Seq: 1})
	test.DemandSuccess(t, err)

	_, dup, err := ch.HandleIncoming(raw)
	test.DemandSuccess(t, err)
	if dup {
		t.Fatalf("first delivery should not be a duplicate")
	}

	_, dup, err = ch.HandleIncoming(raw)
	test.DemandSuccess(t, err)
	if !dup {
		t.Fatalf("second delivery of the same seq should be a duplicate")
	}

	test.DemandEquality(t, ch.Stats().DuplicateDropped, 1)
}

func TestInputMessagesAreNotDeduplicatedBySeq(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")

	raw, err := wire.Encode(wire.Message{Type: wire.Input, Seq: 1})
	test.DemandSuccess(t, err)

	_, dup1, err := ch.HandleIncoming(raw)
	test.DemandSuccess(t, err)
	_, dup2, err := ch.HandleIncoming(raw)
	test.DemandSuccess(t, err)

	if dup1 || dup2 {
		t.Fatalf("Input messages must not be deduplicated at the peer layer")
	}
}

func TestRetransmitDueResendsAfterBackoff(t *testing.T) {
	a, b, bAddr := newLinkedEndpoints(t)
	defer a.Close()
	defer b.Close()

	ch := peer.New(bAddr, "bob")
	test.DemandSuccess(t, ch.Send(a, wire.Message{Type: wire.Ready}))

	// drain the original send
	_, _, err := b.Recv(time.Second)
	test.DemandSuccess(t, err)

	// not yet due
	test.DemandSuccess(t, ch.RetransmitDue(a, time.Now()))
	_, _, err = b.Recv(50 * time.Millisecond)
	test.DemandFailure(t, err)

	// due after the initial backoff elapses
	test.DemandSuccess(t, ch.RetransmitDue(a, time.Now().Add(peer.RetransmitInitial)))
	_, _, err = b.Recv(time.Second)
	test.DemandSuccess(t, err)

	test.DemandEquality(t, ch.Stats().Retried, 1)
}

func TestNeedsKeepAliveAfterSilence(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")
	if ch.NeedsKeepAlive(time.Now()) {
		t.Fatalf("should not need keep-alive immediately after construction")
	}
	if !ch.NeedsKeepAlive(time.Now().Add(peer.KeepAliveInterval)) {
		t.Fatalf("should need keep-alive after KeepAliveInterval of silence")
	}
}

func TestTimedOutAfterSilence(t *testing.T) {
	ch := peer.New(netip.MustParseAddrPort("127.0.0.1:4000"), "bob")
	if ch.TimedOut(time.Now()) {
		t.Fatalf("should not be timed out immediately after construction")
	}
	if !ch.TimedOut(time.Now().Add(peer.TimeoutInterval)) {
		t.Fatalf("should be timed out after TimeoutInterval of silence")
	}
}
