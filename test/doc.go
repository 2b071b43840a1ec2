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

// Package test contains helper functions to remove common boilerplate and
// make testing easier across the netplay packages.
//
// The ExpectedFailure and ExpectedSuccess functions test for failure and
// success under generic conditions. The nil type is treated as a success,
// and consequently will cause ExpectedFailure to fail and ExpectedSuccess to
// succeed; this mirrors how error values normally work (nil meaning no
// error).
//
// The Writer type implements io.Writer and should be used to capture output
// for later comparison with Writer.Compare(). CappedWriter is similar but
// stops buffering once a predefined size is reached, useful for bounding
// output from runaway loops under test.
//
// Equate() compares like-typed variables for equality, with some ergonomic
// widening (eg. a uint16 can be compared against a literal int). The Demand*
// functions are the fatal counterparts, useful when a later part of the test
// depends on an earlier value being correct.
package test
