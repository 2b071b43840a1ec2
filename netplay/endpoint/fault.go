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

package endpoint

import (
	"sync"
	"time"

	"github.com/jetsetilly/gopher2600netplay/random"
)

// FaultInjection models an unreliable link: outgoing datagrams are dropped
// with probability LossPercent/100, and surviving datagrams are delayed by
// a uniform random amount in [MinLatencyMS, MaxLatencyMS]. Behaviour is
// deterministic given Seed, per spec.md §4.1.
//
// This is the runtime-settable form of the original reference's
// CONNECTION_TEST block (send_delay_min, send_delay_max, packet_loss),
// exposed here so a session can be configured with fault injection before
// Bind rather than only at compile time.
type FaultInjection struct {
	MinLatencyMS int
	MaxLatencyMS int
	LossPercent  float64
	Seed         int64

	mu  sync.Mutex
	rng *random.Random
}

// NewFaultInjection is the preferred method of initialisation for
// FaultInjection; it owns the seeded RNG so repeated calls to shouldDrop and
// latency advance a single deterministic sequence.
func NewFaultInjection(minLatencyMS, maxLatencyMS int, lossPercent float64, seed int64) *FaultInjection {
	return &FaultInjection{
		MinLatencyMS: minLatencyMS,
		MaxLatencyMS: maxLatencyMS,
		LossPercent:  lossPercent,
		Seed:         seed,
		rng:          random.NewRandom(seed),
	}
}

func (f *FaultInjection) shouldDrop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rng == nil {
		f.rng = random.NewRandom(f.Seed)
	}
	return f.rng.Bool(f.LossPercent / 100.0)
}

func (f *FaultInjection) latency() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rng == nil {
		f.rng = random.NewRandom(f.Seed)
	}
	if f.MaxLatencyMS <= 0 {
		return 0
	}
	return time.Duration(f.rng.IntnRange(f.MinLatencyMS, f.MaxLatencyMS)) * time.Millisecond
}
