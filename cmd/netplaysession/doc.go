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

// Command netplaysession is a standalone front end for the netplay/session
// package: a terminal console for hosting, connecting to, or spectating a
// lock-step netplay session, independent of any particular emulator core.
// Command line handling follows the same modalflag.Modes sub-mode dispatch
// as the main gopher2600 binary (HOST, CONNECT, OBSERVE, VERSION), and the
// console itself is a bubbletea program.
//
// A real emulator wires netplay/hook.Adapter directly into its controller
// poll routine and never needs this binary. netplaysession exists for
// testing a session end to end, and as a minimal spectator client, without
// a console attached to either side.
package main
