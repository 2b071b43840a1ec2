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

// JoinPayload is carried by a Join message: a client announcing itself and
// its captured sync-state to the host.
type JoinPayload struct {
	Username  string
	SyncState []byte
}

func (p JoinPayload) Marshal() []byte {
	b := writeString(nil, p.Username)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(p.SyncState)))
	return append(b, p.SyncState...)
}

func UnmarshalJoin(b []byte) (JoinPayload, error) {
	username, b, err := readString(b)
	if err != nil {
		return JoinPayload{}, err
	}
	if len(b) < 4 {
		return JoinPayload{}, curated.Errorf("wire: short Join payload")
	}
	n := binary.LittleEndian.Uint32(b[:4])
	b = b[4:]
	if uint32(len(b)) < n {
		return JoinPayload{}, curated.Errorf("wire: short Join sync-state: want %d, have %d", n, len(b))
	}
	return JoinPayload{Username: username, SyncState: b[:n]}, nil
}

// AcceptPayload is carried by an Accept message: the host's reply admitting
// a client, with the current peer list (usernames in join order, side 0
// first), the agreed player count, and the sync-state the host captured.
type AcceptPayload struct {
	Peers      []string
	NumPlayers uint8
	SyncState  []byte
}

func (p AcceptPayload) Marshal() []byte {
	b := []byte{p.NumPlayers}
	b = binary.LittleEndian.AppendUint16(b, uint16(len(p.Peers)))
	for _, peer := range p.Peers {
		b = writeString(b, peer)
	}
	b = binary.LittleEndian.AppendUint32(b, uint32(len(p.SyncState)))
	return append(b, p.SyncState...)
}

func UnmarshalAccept(b []byte) (AcceptPayload, error) {
	if len(b) < 3 {
		return AcceptPayload{}, curated.Errorf("wire: short Accept payload")
	}
	p := AcceptPayload{NumPlayers: b[0]}
	numPeers := int(binary.LittleEndian.Uint16(b[1:3]))
	b = b[3:]

	p.Peers = make([]string, 0, numPeers)
	for i := 0; i < numPeers; i++ {
		var peer string
		var err error
		peer, b, err = readString(b)
		if err != nil {
			return AcceptPayload{}, err
		}
		p.Peers = append(p.Peers, peer)
	}

	if len(b) < 4 {
		return AcceptPayload{}, curated.Errorf("wire: short Accept sync-state length")
	}
	n := binary.LittleEndian.Uint32(b[:4])
	b = b[4:]
	if uint32(len(b)) < n {
		return AcceptPayload{}, curated.Errorf("wire: short Accept sync-state: want %d, have %d", n, len(b))
	}
	p.SyncState = b[:n]

	return p, nil
}

// RejectReason enumerates the human-readable reasons a Join may be refused.
type RejectReason uint8

const (
	RejectUnknown RejectReason = iota
	RejectBIOSMismatch
	RejectProgramMismatch
	RejectBehaviorToggleMismatch
	RejectSessionFull
	RejectSessionNotAdvertising
)

func (r RejectReason) String() string {
	switch r {
	case RejectBIOSMismatch:
		return "Bios version mismatch"
	case RejectProgramMismatch:
		return "Program identifier mismatch"
	case RejectBehaviorToggleMismatch:
		return "Behavior toggle mismatch"
	case RejectSessionFull:
		return "Session is full"
	case RejectSessionNotAdvertising:
		return "Session is not accepting joins"
	default:
		return "Unknown rejection reason"
	}
}

// RejectPayload is carried by a Reject message.
type RejectPayload struct {
	Reason RejectReason
}

func (p RejectPayload) Marshal() []byte {
	return []byte{byte(p.Reason)}
}

func UnmarshalReject(b []byte) (RejectPayload, error) {
	if len(b) < 1 {
		return RejectPayload{}, curated.Errorf("wire: short Reject payload")
	}
	return RejectPayload{Reason: RejectReason(b[0])}, nil
}

// DelayPayload is carried by a Delay message: the host's proposed (or
// reaffirmed) input delay, in frames.
type DelayPayload struct {
	Delay uint8
}

func (p DelayPayload) Marshal() []byte {
	return []byte{p.Delay}
}

func UnmarshalDelay(b []byte) (DelayPayload, error) {
	if len(b) < 1 {
		return DelayPayload{}, curated.Errorf("wire: short Delay payload")
	}
	return DelayPayload{Delay: b[0]}, nil
}

// InputPayload is carried by an Input message: one side's sampled
// controller bytes for Frame (carried in the Message header, not here).
type InputPayload struct {
	Side  uint8
	Input []byte
}

func (p InputPayload) Marshal() []byte {
	b := make([]byte, 1+len(p.Input))
	b[0] = p.Side
	copy(b[1:], p.Input)
	return b
}

func UnmarshalInput(b []byte) (InputPayload, error) {
	if len(b) < 1 {
		return InputPayload{}, curated.Errorf("wire: short Input payload")
	}
	return InputPayload{Side: b[0], Input: b[1:]}, nil
}

// AckPayload is carried by an Ack message: the seq number of the message
// being acknowledged.
type AckPayload struct {
	AckedSeq uint32
}

func (p AckPayload) Marshal() []byte {
	return binary.LittleEndian.AppendUint32(nil, p.AckedSeq)
}

func UnmarshalAck(b []byte) (AckPayload, error) {
	if len(b) < 4 {
		return AckPayload{}, curated.Errorf("wire: short Ack payload")
	}
	return AckPayload{AckedSeq: binary.LittleEndian.Uint32(b[:4])}, nil
}

// ChatPayload is carried by a Chat message.
type ChatPayload struct {
	Text string
}

func (p ChatPayload) Marshal() []byte {
	return writeString(nil, p.Text)
}

func UnmarshalChat(b []byte) (ChatPayload, error) {
	text, _, err := readString(b)
	if err != nil {
		return ChatPayload{}, err
	}
	return ChatPayload{Text: text}, nil
}

// PingPongPayload is carried by Ping and Pong messages: a nonce the sender
// can match against the reply.
type PingPongPayload struct {
	Nonce [16]byte
}

func (p PingPongPayload) Marshal() []byte {
	b := make([]byte, 16)
	copy(b, p.Nonce[:])
	return b
}

func UnmarshalPingPong(b []byte) (PingPongPayload, error) {
	if len(b) < 16 {
		return PingPongPayload{}, curated.Errorf("wire: short Ping/Pong payload")
	}
	var p PingPongPayload
	copy(p.Nonce[:], b[:16])
	return p, nil
}
