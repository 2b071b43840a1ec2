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

import "time"

// Stats are the per-peer counters implied by spec.md §8's boundary
// scenario 3 ("retransmission counters show ≥1 retry on ≥50% of reliable
// messages"). They are read-only from the outside and exposed through
// Channel.Stats; only the tests read them.
type Stats struct {
	Sent              int
	Acked             int
	Retried           int
	DuplicateDropped  int
	LastRTT           time.Duration
}
