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

// Package session implements the netplay lobby and lock-step frame loop:
// the state machine that binds a local endpoint, discovers or accepts
// peers, negotiates a shared sync-state and input delay, and then mediates
// the steady-state exchange of per-frame controller input via a
// framequeue.Queue until the session is cancelled or ends.
//
// A Session owns one endpoint.Endpoint and one peer.Channel per connected
// peer. It never blocks the caller of Open for longer than the configured
// join timeout; the handshake and frame loop both run on their own
// goroutines, reporting back through the notifications.Notify callback
// interface and, ultimately, an ExitReason collected by Wait.
package session
