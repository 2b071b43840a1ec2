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

package wire

import (
	"encoding/binary"

	"github.com/jetsetilly/gopher2600netplay/curated"
)

// Encode marshals m into a fresh byte slice ready to be handed to the
// datagram endpoint. Returns an error if the payload is too large to be
// described by the u16 payload_len field.
func Encode(m Message) ([]byte, error) {
	if len(m.Payload) > MaxPayload {
		return nil, curated.Errorf(errOversizedPayload, len(m.Payload), MaxPayload)
	}

	b := make([]byte, HeaderSize+len(m.Payload))
	b[0] = byte(m.Type)
	binary.LittleEndian.PutUint32(b[1:5], m.Seq)
	binary.LittleEndian.PutUint32(b[5:9], m.Frame)
	binary.LittleEndian.PutUint16(b[9:11], uint16(len(m.Payload)))
	copy(b[HeaderSize:], m.Payload)

	return b, nil
}

// Decode unmarshals a Message from b. b may contain trailing bytes beyond
// the message (none are currently produced by Encode, but a defensive
// caller can over-read from a stream-oriented transport); only HeaderSize +
// payload_len bytes are consumed.
func Decode(b []byte) (Message, error) {
	if len(b) < HeaderSize {
		return Message{}, curated.Errorf(errShortHeader, len(b), HeaderSize)
	}

	m := Message{
		Type:  Type(b[0]),
		Seq:   binary.LittleEndian.Uint32(b[1:5]),
		Frame: binary.LittleEndian.Uint32(b[5:9]),
	}

	payloadLen := int(binary.LittleEndian.Uint16(b[9:11]))
	if len(b)-HeaderSize < payloadLen {
		return Message{}, curated.Errorf(errShortPayload, payloadLen, len(b)-HeaderSize)
	}

	m.Payload = make([]byte, payloadLen)
	copy(m.Payload, b[HeaderSize:HeaderSize+payloadLen])

	return m, nil
}

// writeString appends a length-prefixed UTF-8 string (u16 len, then bytes)
// to b, returning the extended slice.
func writeString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}

// readString reads a length-prefixed UTF-8 string from the front of b,
// returning the string and the remainder of b.
func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, curated.Errorf("wire: short string length prefix")
	}
	n := int(binary.LittleEndian.Uint16(b[:2]))
	b = b[2:]
	if len(b) < n {
		return "", nil, curated.Errorf("wire: short string body: want %d bytes, have %d", n, len(b))
	}
	return string(b[:n]), b[n:], nil
}
