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

// Package random should be used in preference to the math/rand package
// wherever a netplay component needs numbers that are reproducible given a
// seed — principally the datagram endpoint's fault-injection mode (latency
// and packet loss), which must behave identically across runs of the same
// test.
//
// A Random is seeded once at construction and thereafter advances
// deterministically: the Nth call to IntnRange or Bool after construction
// always returns the same value for a given seed, regardless of wall-clock
// time or goroutine scheduling.
package random
