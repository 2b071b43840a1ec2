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

package wire_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/gopher2600netplay/netplay/wire"
	"github.com/jetsetilly/gopher2600netplay/test"
)

func TestHeaderRoundTrip(t *testing.T) {
	m := wire.Message{
		Type:    wire.Input,
		Seq:     42,
		Frame:   1001,
		Payload: []byte{0x01, 0xab, 0xcd},
	}

	b, err := wire.Encode(m)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(b), wire.HeaderSize+len(m.Payload))

	decoded, err := wire.Decode(b)
	test.DemandSuccess(t, err)

	test.DemandEquality(t, decoded.Type, m.Type)
	test.DemandEquality(t, decoded.Seq, m.Seq)
	test.DemandEquality(t, decoded.Frame, m.Frame)
	if !bytes.Equal(decoded.Payload, m.Payload) {
		t.Errorf("payload mismatch: got %v, want %v", decoded.Payload, m.Payload)
	}
}

func TestDecodeShortHeader(t *testing.T) {
	_, err := wire.Decode([]byte{0x01, 0x02})
	test.DemandFailure(t, err)
}

func TestDecodeShortPayload(t *testing.T) {
	b, err := wire.Encode(wire.Message{Type: wire.Chat, Payload: []byte("hello")})
	test.DemandSuccess(t, err)

	_, err = wire.Decode(b[:len(b)-2])
	test.DemandFailure(t, err)
}

func TestOversizedPayloadRejected(t *testing.T) {
	_, err := wire.Encode(wire.Message{Type: wire.Chat, Payload: make([]byte, wire.MaxPayload+1)})
	test.DemandFailure(t, err)
}

func TestTypeReliability(t *testing.T) {
	reliable := []wire.Type{wire.Join, wire.Accept, wire.Delay, wire.Ready, wire.Chat, wire.EndSession}
	unreliable := []wire.Type{wire.Reject, wire.Input, wire.Ack, wire.Ping, wire.Pong}

	for _, ty := range reliable {
		if !ty.Reliable() {
			t.Errorf("%s should be reliable", ty)
		}
	}
	for _, ty := range unreliable {
		if ty.Reliable() {
			t.Errorf("%s should not be reliable", ty)
		}
	}
}

func TestTypeString(t *testing.T) {
	test.Equate(t, wire.Join.String(), "Join")
	test.Equate(t, wire.Type(255).String(), "Unknown")
}
