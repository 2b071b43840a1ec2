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

// Package wire implements the netplay message framing and codec. Every
// message on the wire is little-endian and begins with a fixed header:
//
//	u8  type
//	u32 seq
//	u32 frame
//	u16 payload_len
//
// followed by payload_len bytes of type-specific payload. Strings inside a
// payload are length-prefixed UTF-8 (u16 len, then bytes). The package only
// knows how to marshal and unmarshal messages; it has no notion of sockets,
// retries, or sessions.
package wire
