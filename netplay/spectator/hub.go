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

package spectator

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jetsetilly/gopher2600netplay/logger"
	"github.com/jetsetilly/gopher2600netplay/notifications"
)

// sendBuffer bounds how many un-flushed events a slow subscriber can fall
// behind by before the hub drops it, mirroring mine-and-die's hub dropping
// a subscriber whose broadcast write blocks.
const sendBuffer = 16

// Event is the wire shape of a single notice, marshalled as JSON for every
// websocket subscriber. It mirrors the notifications.Notify callback
// signature one-for-one; there is no richer spectator-specific protocol
// because Observe mode has nothing to add beyond what the session already
// tells its owner.
type Event struct {
	Notice notifications.Notice `json:"notice"`
	Detail string               `json:"detail"`
}

// Hub fans a session's notifications out to websocket subscribers. The
// zero value is not usable; construct with NewHub.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	upgrader    websocket.Upgrader
}

// subscriber owns one websocket connection's outbound queue. A dedicated
// write pump goroutine drains send so that a slow client never blocks the
// hub's broadcast loop.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns an empty Hub ready to accept subscribers and notices.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Notify implements notifications.Notify, letting a Hub be passed directly
// as a session's notification sink in Observe mode. It never returns an
// error: a spectator feed with no subscribers is not itself a failure.
func (h *Hub) Notify(notice notifications.Notice, detail string) error {
	data, err := json.Marshal(Event{Notice: notice, Detail: detail})
	if err != nil {
		logger.Logf(logger.Allow, "spectator", "marshal failed: %v", err)
		return nil
	}
	h.broadcast(data)
	return nil
}

// broadcast enqueues data on every subscriber's send channel, dropping (and
// unregistering) any subscriber whose queue is already full rather than
// blocking the caller -- the session's receive thread calls Notify and must
// never stall on a slow spectator.
func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			logger.Logf(logger.Allow, "spectator", "dropping slow subscriber")
			delete(h.subscribers, sub)
			close(sub.send)
		}
	}
}

// ServeHTTP upgrades the request to a websocket connection and registers it
// as a subscriber until the connection closes. It implements http.Handler
// so a Hub can be mounted directly on a mux.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logf(logger.Allow, "spectator", "upgrade failed: %v", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go h.writePump(sub, done)
	h.readPump(sub, done)
}

// writePump drains sub.send until it is closed (by broadcast, on drop) or
// done is closed (by readPump, on disconnect).
func (h *Hub) writePump(sub *subscriber, done chan struct{}) {
	for {
		select {
		case data, ok := <-sub.send:
			if !ok {
				_ = sub.conn.Close()
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = sub.conn.Close()
				return
			}
		case <-done:
			_ = sub.conn.Close()
			return
		}
	}
}

// readPump discards anything a spectator sends -- the feed is read-only --
// and exists only to detect disconnection, the same role conn.ReadMessage
// plays in mine-and-die's handler loop.
func (h *Hub) readPump(sub *subscriber, done chan struct{}) {
	defer close(done)
	defer h.unsubscribe(sub)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
}

// SubscriberCount returns the number of currently-connected spectators,
// useful for a status line in the owning front end.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
