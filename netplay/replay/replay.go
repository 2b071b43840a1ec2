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

package replay

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"

	"github.com/jetsetilly/gopher2600netplay/curated"
)

// Magic identifies a netplay replay file, per spec.md §6.
const Magic = "REP1"

// ErrNotARecording is returned by NewReader when the source does not begin
// with Magic.
const ErrNotARecording = "replay: not a recording (bad magic)"

// ErrNoSyncState is returned by Write/WriteRecord when called before
// SetSyncState.
const ErrNoSyncState = "replay: write before sync-state was set"

// ErrShortRecord is returned by Next when fewer bytes remain than a full
// record requires.
const ErrShortRecord = "replay: short record"

// Record is one (frame, side, input) entry in a replay.
type Record struct {
	Frame uint32
	Side  uint8
	Input []byte
}

// Writer streams a replay to an underlying io.Writer as a session
// progresses. SetSyncState must be called exactly once, before the first
// Write, to emit the fixed header.
type Writer struct {
	w             io.Writer
	id            uuid.UUID
	headerWritten bool
}

// NewWriter creates a Writer with a freshly generated session identifier.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, id: uuid.New()}
}

// SessionID returns the identifier stamped into the replay's header.
func (rw *Writer) SessionID() uuid.UUID {
	return rw.id
}

// SetSyncState writes the replay header: magic, session id, then the
// length-prefixed sync-state. Must be called before the first Write.
func (rw *Writer) SetSyncState(state []byte) error {
	b := []byte(Magic)
	idBytes, err := rw.id.MarshalBinary()
	if err != nil {
		return curated.Errorf("replay: %v", err)
	}
	b = append(b, idBytes...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(state)))
	b = append(b, state...)

	if _, err := rw.w.Write(b); err != nil {
		return curated.Errorf("replay: write header: %v", err)
	}
	rw.headerWritten = true
	return nil
}

// Write appends one (frame, side, input) record.
func (rw *Writer) Write(frame uint32, side uint8, input []byte) error {
	if !rw.headerWritten {
		return curated.Errorf(ErrNoSyncState)
	}

	b := make([]byte, 0, 4+1+len(input))
	b = binary.LittleEndian.AppendUint32(b, frame)
	b = append(b, side)
	b = append(b, input...)

	if _, err := rw.w.Write(b); err != nil {
		return curated.Errorf("replay: write record: %v", err)
	}
	return nil
}

// Close closes the underlying writer, if it implements io.Closer.
func (rw *Writer) Close() error {
	if c, ok := rw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Reader reads back a replay file produced by Writer.
type Reader struct {
	r          io.Reader
	id         uuid.UUID
	syncState  []byte
	inputWidth int
}

// NewReader reads and validates the replay header, leaving r positioned at
// the first record. inputWidth is the number of input bytes per record,
// which the format itself does not encode (it is a property of the
// session that produced the replay, carried out-of-band).
func NewReader(r io.Reader, inputWidth int) (*Reader, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, curated.Errorf("replay: %v", err)
	}
	if string(magic) != Magic {
		return nil, curated.Errorf(ErrNotARecording)
	}

	idBytes := make([]byte, 16)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return nil, curated.Errorf("replay: %v", err)
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return nil, curated.Errorf("replay: %v", err)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, curated.Errorf("replay: %v", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])

	state := make([]byte, n)
	if _, err := io.ReadFull(r, state); err != nil {
		return nil, curated.Errorf("replay: %v", err)
	}

	return &Reader{r: r, id: id, syncState: state, inputWidth: inputWidth}, nil
}

// SessionID returns the identifier recorded in the replay's header.
func (rr *Reader) SessionID() uuid.UUID {
	return rr.id
}

// SyncState returns the sync-state snapshot recorded in the replay's
// header.
func (rr *Reader) SyncState() []byte {
	return rr.syncState
}

// Next returns the next record, or io.EOF once the stream is exhausted.
func (rr *Reader) Next() (Record, error) {
	var head [5]byte
	if _, err := io.ReadFull(rr.r, head[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Record{}, curated.Errorf(ErrShortRecord)
		}
		return Record{}, err
	}

	input := make([]byte, rr.inputWidth)
	if rr.inputWidth > 0 {
		if _, err := io.ReadFull(rr.r, input); err != nil {
			return Record{}, curated.Errorf(ErrShortRecord)
		}
	}

	return Record{
		Frame: binary.LittleEndian.Uint32(head[:4]),
		Side:  head[4],
		Input: input,
	}, nil
}
