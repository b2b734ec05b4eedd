package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/blumie/wellcheck/internal/store"
)

const writeWait = 5 * time.Second

// Message is one frame sent to dashboard clients.
type Message struct {
	Type        string             `json:"type"`
	Submission  *store.Submission  `json:"submission,omitempty"`
	Submissions []store.Submission `json:"submissions,omitempty"`
}

// Hub fans submission updates out to connected dashboards. It
// implements checkin.Publisher.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger.With().Str("component", "ws").Logger(),
	}
}

// Add registers conn and sends it msg first, under the same lock so no
// publish can overtake it.
func (h *Hub) Add(conn *websocket.Conn, first Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := write(conn, first); err != nil {
		return err
	}
	h.conns[conn] = struct{}{}
	h.logger.Debug().Int("total", len(h.conns)).Msg("dashboard connected")
	return nil
}

// Remove unregisters and closes conn.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
		h.logger.Debug().Int("total", len(h.conns)).Msg("dashboard disconnected")
	}
}

// Publish sends sub to every connection. A connection that fails to
// take the write is dropped.
func (h *Hub) Publish(sub store.Submission) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := write(conn, Message{Type: "submission", Submission: &sub}); err != nil {
			h.logger.Warn().Err(err).Msg("dropping dashboard connection")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

func write(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
