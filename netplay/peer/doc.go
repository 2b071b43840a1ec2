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

// Package peer implements the per-peer reliability layer above the
// datagram endpoint: sequencing, acknowledgment, exponential-backoff
// retransmission, duplicate suppression, and keep-alive.
//
// A Channel tracks exactly one remote peer. The session owns one Channel
// per connected peer and is responsible for creating them on Join/Accept
// and destroying them on session shutdown. Channel itself never touches a
// socket; it only decides what to send and when, leaving the actual I/O to
// whatever endpoint.Endpoint the caller supplies to Send/RetransmitDue.
package peer
