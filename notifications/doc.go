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

// Package notifications allows a netplay session to communicate presentation
// events to whatever is hosting it, without depending on any particular front
// end.
//
// A host passes a Notify implementation to the session. The session calls
// Notify() whenever something happens that a user interface would plausibly
// want to react to: the connection handshake completing, chat, the userlist
// changing, or the session ending. The front end decides what, if anything,
// to do about it.
package notifications
