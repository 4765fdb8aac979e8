package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const hubWriteWait = 10 * time.Second

// Hub fans simulation events out to every connected live channel.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[string]*subscriber
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer per conn
}

// writeJSON sends a message guarded by the subscriber's mutex and write
// deadline.
func (s *subscriber) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(hubWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[string]*subscriber),
	}
}

// ServeHTTP upgrades the request and keeps the subscriber registered
// until its connection drops. Inbound frames are read and discarded;
// the server only pushes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subs[id] = sub
	h.mu.Unlock()
	h.logger.Debug("channel subscriber joined", "id", id)

	defer func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		conn.Close()
		h.logger.Debug("channel subscriber left", "id", id)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends an event envelope to every subscriber. Subscribers
// whose write fails are dropped.
func (h *Hub) Broadcast(event string, data any) {
	env := struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: event, Data: data}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subs))
	for id, s := range h.subs {
		subs[id] = s
	}
	h.mu.Unlock()

	for id, s := range subs {
		if err := s.writeJSON(env); err != nil {
			h.logger.Debug("dropping dead subscriber", "id", id, "error", err)
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			s.conn.Close()
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
