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

// Package spectator implements the read-only websocket bridge offered
// alongside session.ModeObserve: a Hub satisfies notifications.Notify so it
// can be wired directly as a session's notification sink, and re-broadcasts
// every notice it receives as JSON to any number of subscribed websocket
// clients. It never feeds anything back into the session -- Observe mode
// clients watch the lobby, chat, and connection status, nothing more.
//
// The broadcast fan-out (one buffered send channel and write pump per
// subscriber, registration/unregistration funnelled through the hub's own
// mutex) is grounded on Mikko-Finell-mine-and-die's server/hub.go and
// server/internal/net/ws package, adapted from that game's per-tick world
// snapshot to this package's per-notice event stream.
package spectator
