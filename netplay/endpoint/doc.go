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

// Package endpoint implements the lowest layer of the netplay stack: a
// stateless UDP datagram endpoint. It knows nothing about peers, sequencing
// or reliability — those live in the peer package, one layer up. All it
// does is bind a local port and move length-delimited byte slices to and
// from known addresses.
//
// An Endpoint may be configured with a FaultInjection profile that adds
// artificial latency and packet loss to outgoing datagrams, for exercising
// the retransmission logic above it under reproducible conditions.
package endpoint
