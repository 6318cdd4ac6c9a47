package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// TypeUpdateRegistrations is the message type pushed when an event's
// registration count changed. The message carries only the event id; clients
// re-fetch the event read model rather than trusting a pushed count.
const TypeUpdateRegistrations = "UPDATE_REGISTRATIONS"

const writeTimeout = 5 * time.Second

// Message is the wire format pushed to connected clients.
type Message struct {
	Type    string `json:"type"`
	EventID string `json:"eventId"`
}

// Hub is the connection registry for the notification fan-out. It holds the
// set of currently connected clients in memory only; the set is rebuilt from
// new connections after a restart. Hub implements domain.Notifier.
type Hub struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub returns an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler for the websocket endpoint. The channel
// is server-push only: client frames are read and discarded, and the read
// loop doubles as disconnect detection.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

func (h *Hub) serve(conn *websocket.Conn) {
	h.register(conn)
	h.logger.Debug("ws connected", "clients", h.Len())
	defer func() {
		h.unregister(conn)
		conn.Close()
		h.logger.Debug("ws disconnected", "clients", h.Len())
	}()

	buf := make([]byte, 512)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Len reports the number of currently connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// RegistrationsChanged broadcasts an UPDATE_REGISTRATIONS message to every
// connected client. Delivery is best-effort: a connection that fails its
// write is closed and dropped without affecting the others, and the caller
// never sees an error.
func (h *Hub) RegistrationsChanged(eventID string) {
	data, err := json.Marshal(Message{Type: TypeUpdateRegistrations, EventID: eventID})
	if err != nil {
		h.logger.Error("marshal ws message", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write(data); err != nil {
			h.logger.Debug("ws send failed, dropping connection", "err", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// CloseAll closes every connection; used on server shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}
