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

// Package framequeue holds, for every side in the session, a bounded
// ordered map from frame number to that side's sampled controller input.
// Set publishes the local side's next frame; Get blocks until a given
// side's input for a given frame has arrived, is cancelled, or times out.
//
// The queue knows nothing about the network: it only decides what has
// arrived and what still needs sending. The session owns actually moving
// bytes, using the pending-message list returned by Outbox to drive the
// peer channels.
package framequeue
