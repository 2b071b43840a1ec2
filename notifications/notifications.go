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

package notifications

// Notice describes events raised by a netplay session that somehow change
// what should be presented to the user. A front end subscribes to these to
// drive its own UI without the session package knowing anything about it.
type Notice string

// List of defined notifications.
const (
	// the session has moved to the Running state. detail is the negotiated
	// input delay, as a string.
	NoticeConnectionEstablished Notice = "NoticeConnectionEstablished"

	// the set of connected usernames has changed.
	NoticeUserlist Notice = "NoticeUserlist"

	// a chat message has been received.
	NoticeChat Notice = "NoticeChat"

	// a general status line update, suitable for display in a status bar.
	NoticeStatus Notice = "NoticeStatus"

	// the session has ended. detail describes why (see session.ExitReason).
	NoticeSessionEnded Notice = "NoticeSessionEnded"
)

// Notify is used for communication between a netplay session and whatever is
// hosting it (typically a front end, but tests or a headless runner work
// too). The detail argument's meaning depends on notice; see the constants
// above.
type Notify interface {
	Notify(notice Notice, detail string) error
}
