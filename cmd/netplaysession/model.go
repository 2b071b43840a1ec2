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
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jetsetilly/gopher2600netplay/logger"
	"github.com/jetsetilly/gopher2600netplay/netplay/session"
	"github.com/jetsetilly/gopher2600netplay/notifications"
)

const maxChatLines = 12

// readyForConfirmStatus mirrors the exact NoticeStatus text protocol.go
// sends when the session reaches Ready, so the host model knows when to
// switch into its delay-confirmation prompt.
const readyForConfirmStatus = "all players joined, waiting for delay confirmation"

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	styleStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleUsers  = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	styleChat   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleError  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	stylePane   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// notifyEvent is the bubbletea message wrapping a single notifications.Notify
// callback, queued by notifyBridge and drained one at a time by waitForEvent.
type notifyEvent struct {
	notice notifications.Notice
	detail string
}

// notifyBridge implements notifications.Notify by forwarding every notice
// onto a buffered channel the bubbletea program drains via waitForEvent,
// mirroring the waitForLog channel-to-Cmd bridge pattern; it also fans the
// same notice out to an optional spectator.Hub.
type notifyBridge struct {
	events chan notifyEvent
	hub    notifications.Notify
}

func newNotifyBridge(hub notifications.Notify) *notifyBridge {
	return &notifyBridge{
		events: make(chan notifyEvent, 64),
		hub:    hub,
	}
}

func (b *notifyBridge) Notify(notice notifications.Notice, detail string) error {
	if b.hub != nil {
		_ = b.hub.Notify(notice, detail)
	}
	select {
	case b.events <- notifyEvent{notice: notice, detail: detail}:
	default:
		logger.Logf(logger.Allow, "netplaysession", "dropped notice %s: model event queue full", notice)
	}
	return nil
}

func waitForEvent(events chan notifyEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return nil
		}
		return evt
	}
}

// model is the bubbletea console for a single hosted, connected or observed
// netplay session. It has no opinion on how that session was configured;
// main.go builds the session and hands it, and the notifyBridge feeding it,
// to newModel.
type model struct {
	mode   session.Mode
	s      *session.Session
	events chan notifyEvent

	status   string
	userlist []string
	chat     []string
	err      string
	quit     bool

	// awaitingConfirm and delay implement the host side of spec.md
	// §4.3's input-delay negotiation, grounded on
	// NetplayPlugin.cpp's WaitForConfirmation(): once every peer has
	// joined, the host reviews (and may adjust) the delay before
	// confirming it with the 'c' key.
	awaitingConfirm bool
	delay           int

	input textinput.Model
}

func newModel(mode session.Mode, s *session.Session, events chan notifyEvent, delay int) model {
	ti := textinput.New()
	ti.Placeholder = "type a message, enter to send"
	ti.CharLimit = 256
	ti.Width = 60
	if mode != session.ModeObserve {
		ti.Focus()
	}

	return model{
		mode:   mode,
		s:      s,
		events: events,
		status: "connecting...",
		delay:  delay,
		input:  ti,
	}
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.s.Cancel()
			m.quit = true
			return m, tea.Quit
		case "c":
			if m.awaitingConfirm {
				if err := m.s.ConfirmDelay(m.delay); err != nil {
					m.err = err.Error()
				} else {
					m.awaitingConfirm = false
				}
				return m, nil
			}
		case "+", "=":
			if m.awaitingConfirm && m.delay < 100 {
				m.delay++
				return m, nil
			}
		case "-":
			if m.awaitingConfirm && m.delay > 1 {
				m.delay--
				return m, nil
			}
		case "enter":
			if m.awaitingConfirm {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if text == "" || m.mode == session.ModeObserve {
				return m, nil
			}
			if err := m.s.Chat(text); err != nil {
				m.err = err.Error()
			}
			return m, nil
		}

	case notifyEvent:
		m.applyEvent(msg)
		if m.quit {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) applyEvent(evt notifyEvent) {
	switch evt.notice {
	case notifications.NoticeConnectionEstablished:
		m.status = fmt.Sprintf("running, input delay %s frame(s)", evt.detail)
	case notifications.NoticeUserlist:
		if evt.detail == "" {
			m.userlist = nil
		} else {
			m.userlist = strings.Split(evt.detail, ",")
		}
	case notifications.NoticeChat:
		m.chat = append(m.chat, evt.detail)
		if len(m.chat) > maxChatLines {
			m.chat = m.chat[len(m.chat)-maxChatLines:]
		}
	case notifications.NoticeStatus:
		m.status = evt.detail
		if m.mode == session.ModeHost && evt.detail == readyForConfirmStatus {
			m.awaitingConfirm = true
		}
	case notifications.NoticeSessionEnded:
		m.status = "ended: " + evt.detail
		m.quit = true
	}
}

func (m model) View() string {
	b := strings.Builder{}

	b.WriteString(styleTitle.Render(fmt.Sprintf("netplaysession -- %s", m.mode)))
	b.WriteString("\n")
	b.WriteString(styleStatus.Render(m.status))
	b.WriteString("\n\n")

	if len(m.userlist) > 0 {
		b.WriteString(styleUsers.Render("players: " + strings.Join(m.userlist, ", ")))
		b.WriteString("\n\n")
	}

	if m.awaitingConfirm {
		b.WriteString(styleTitle.Render(fmt.Sprintf("confirm input delay: %d frame(s)", m.delay)))
		b.WriteString("\n")
		b.WriteString(styleStatus.Render("+/- to adjust, c to confirm and start"))
		b.WriteString("\n\n")
	}

	chatPane := stylePane.Render(styleChat.Render(strings.Join(m.chat, "\n")))
	b.WriteString(chatPane)
	b.WriteString("\n")

	if m.mode != session.ModeObserve {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString(styleError.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(styleStatus.Render("ctrl+c to end the session"))

	return b.String()
}
