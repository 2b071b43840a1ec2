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

package main

import (
	"testing"

	"github.com/jetsetilly/gopher2600netplay/netplay/session"
	"github.com/jetsetilly/gopher2600netplay/notifications"
)

// fakeHub records every notice forwarded to it, standing in for a
// *spectator.Hub without opening a real websocket listener.
type fakeHub struct {
	notices []notifications.Notice
}

func (f *fakeHub) Notify(notice notifications.Notice, detail string) error {
	f.notices = append(f.notices, notice)
	return nil
}

func TestNotifyBridgeFansOutToHub(t *testing.T) {
	hub := &fakeHub{}
	b := newNotifyBridge(hub)

	if err := b.Notify(notifications.NoticeStatus, "hello"); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	if len(hub.notices) != 1 || hub.notices[0] != notifications.NoticeStatus {
		t.Fatalf("expected hub to receive NoticeStatus, got %v", hub.notices)
	}

	select {
	case evt := <-b.events:
		if evt.detail != "hello" {
			t.Errorf("detail = %q, want %q", evt.detail, "hello")
		}
	default:
		t.Fatalf("expected an event queued for the model")
	}
}

func TestNotifyBridgeDropsWhenQueueFull(t *testing.T) {
	b := newNotifyBridge(nil)
	for i := 0; i < cap(b.events); i++ {
		if err := b.Notify(notifications.NoticeStatus, "fill"); err != nil {
			t.Fatalf("Notify returned error: %v", err)
		}
	}
	// one more push should be silently dropped, not block the caller.
	if err := b.Notify(notifications.NoticeStatus, "overflow"); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if len(b.events) != cap(b.events) {
		t.Fatalf("expected queue to stay at capacity %d, got %d", cap(b.events), len(b.events))
	}
}

func TestModelApplyEventUserlist(t *testing.T) {
	m := model{}
	m.applyEvent(notifyEvent{notice: notifications.NoticeUserlist, detail: "alice,bob"})
	if len(m.userlist) != 2 || m.userlist[0] != "alice" || m.userlist[1] != "bob" {
		t.Errorf("userlist = %v, want [alice bob]", m.userlist)
	}

	m.applyEvent(notifyEvent{notice: notifications.NoticeUserlist, detail: ""})
	if m.userlist != nil {
		t.Errorf("userlist = %v, want nil after empty detail", m.userlist)
	}
}

func TestModelApplyEventChatTruncatesToMaxLines(t *testing.T) {
	m := model{}
	for i := 0; i < maxChatLines+5; i++ {
		m.applyEvent(notifyEvent{notice: notifications.NoticeChat, detail: "alice: hi"})
	}
	if len(m.chat) != maxChatLines {
		t.Errorf("len(chat) = %d, want %d", len(m.chat), maxChatLines)
	}
}

func TestModelApplyEventSessionEndedSetsQuit(t *testing.T) {
	m := model{}
	m.applyEvent(notifyEvent{notice: notifications.NoticeSessionEnded, detail: "Completed"})
	if !m.quit {
		t.Errorf("expected quit to be set after NoticeSessionEnded")
	}
	if m.status != "ended: Completed" {
		t.Errorf("status = %q, want %q", m.status, "ended: Completed")
	}
}

func TestModelApplyEventConnectionEstablished(t *testing.T) {
	m := model{}
	m.applyEvent(notifyEvent{notice: notifications.NoticeConnectionEstablished, detail: "3"})
	if m.status != "running, input delay 3 frame(s)" {
		t.Errorf("status = %q", m.status)
	}
}

func TestModelApplyEventReadyPromptsHostForConfirmation(t *testing.T) {
	m := model{mode: session.ModeHost}
	m.applyEvent(notifyEvent{notice: notifications.NoticeStatus, detail: readyForConfirmStatus})
	if !m.awaitingConfirm {
		t.Errorf("expected awaitingConfirm after host status %q", readyForConfirmStatus)
	}
}

func TestModelApplyEventReadyIgnoredForNonHost(t *testing.T) {
	m := model{mode: session.ModeConnect}
	m.applyEvent(notifyEvent{notice: notifications.NoticeStatus, detail: readyForConfirmStatus})
	if m.awaitingConfirm {
		t.Errorf("expected awaitingConfirm to stay false outside Host mode")
	}
}
