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

package replay_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/jetsetilly/gopher2600netplay/netplay/replay"
	"github.com/jetsetilly/gopher2600netplay/test"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w := replay.NewWriter(&buf)
	test.DemandSuccess(t, w.SetSyncState([]byte("sync-state-blob")))
	test.DemandSuccess(t, w.Write(0, 0, []byte{0xAB, 0x00}))
	test.DemandSuccess(t, w.Write(0, 1, []byte{0xCD, 0x00}))
	test.DemandSuccess(t, w.Write(1, 0, []byte{0x01, 0x02}))

	r, err := replay.NewReader(&buf, 2)
	test.DemandSuccess(t, err)

	test.DemandEquality(t, r.SessionID(), w.SessionID())
	if !bytes.Equal(r.SyncState(), []byte("sync-state-blob")) {
		t.Fatalf("sync-state did not round trip")
	}

	rec, err := r.Next()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, rec.Frame, uint32(0))
	test.DemandEquality(t, rec.Side, uint8(0))
	if !bytes.Equal(rec.Input, []byte{0xAB, 0x00}) {
		t.Fatalf("unexpected input for first record: %v", rec.Input)
	}

	rec, err = r.Next()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, rec.Side, uint8(1))

	rec, err = r.Next()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, rec.Frame, uint32(1))

	_, err = r.Next()
	if err != io.EOF {
		t.Fatalf("expected io.EOF at end of records, got %v", err)
	}
}

func TestWriteBeforeSyncStateFails(t *testing.T) {
	var buf bytes.Buffer
	w := replay.NewWriter(&buf)
	test.DemandFailure(t, w.Write(0, 0, []byte{0x00}))
}

func TestReaderRejectsBadMagic(t *testing.T) {
	_, err := replay.NewReader(bytes.NewReader([]byte("NOPE1234567890123456")), 2)
	test.DemandFailure(t, err)
}

func TestReaderRejectsTruncatedHeader(t *testing.T) {
	_, err := replay.NewReader(bytes.NewReader([]byte("RE")), 2)
	test.DemandFailure(t, err)
}
