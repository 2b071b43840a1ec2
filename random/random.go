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

package random

import (
	"math/rand"
	"time"
)

// Random is a random number generator that is deterministic given a seed.
// Required by the endpoint's fault-injection mode so that a test can
// reproduce a particular latency/loss pattern exactly.
type Random struct {
	rnd *rand.Rand
}

// NewRandom is the preferred method of initialisation for the Random type.
// A zero seed means "use the current time", matching math/rand's own
// default behaviour; tests that need reproducibility should pass a
// non-zero seed explicitly.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rnd: rand.New(rand.NewSource(seed))}
}

// IntnRange returns a random integer in [min, max]. Panics if max < min, in
// line with math/rand.Intn's own panic-on-invalid-argument behaviour.
func (r *Random) IntnRange(min, max int) int {
	if max < min {
		panic("random: IntnRange: max less than min")
	}
	if max == min {
		return min
	}
	return min + r.rnd.Intn(max-min+1)
}

// Bool returns true with probability p (0.0 never true, 1.0 always true).
func (r *Random) Bool(p float64) bool {
	return r.rnd.Float64() < p
}
