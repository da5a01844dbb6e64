package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// writeWait bounds each broadcast write so a stalled client cannot hold the
// hub mutex indefinitely; the deadline error drops the client instead.
const writeWait = 10 * time.Second

// liveEvent is the frame pushed to dashboard subscribers whenever a case
// changes.
type liveEvent struct {
	Event      string `json:"event"`
	CaseNumber string `json:"caseNumber"`
	Timestamp  string `json:"timestamp"`
}

// Hub fans case change events out to connected websocket clients. Writes
// never block a handler; a client that fails a write is dropped.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// LiveHandler upgrades the request and registers the client with the hub.
func (h *Hub) LiveHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Debugw("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	// Drain reads so close frames are processed; unregister on any error.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.conns, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes an event to every connected client asynchronously.
func (h *Hub) Broadcast(event, caseNumber string) {
	frame := liveEvent{
		Event:      event,
		CaseNumber: caseNumber,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.conns {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				delete(h.conns, conn)
				conn.Close()
			}
		}
	}()
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
