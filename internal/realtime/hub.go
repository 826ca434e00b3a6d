package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tradedesk/internal/domain"
)

// Websocket heartbeat configuration
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Session is one live subscriber channel, owned by the hub and keyed by
// user. It is never persisted and is destroyed on disconnect.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	topics map[string]bool

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// Hub maintains the set of active sessions per user and fans state
// events out to them. It holds no ownership over ledger entities.
type Hub struct {
	logger     *zap.Logger
	bufferSize int
	upgrader   websocket.Upgrader

	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Session]bool
}

// NewHub creates a new Hub. bufferSize bounds the outbound queue of
// each session; a consumer that falls behind it is disconnected rather
// than buffered without limit.
func NewHub(logger *zap.Logger, bufferSize int) *Hub {
	return &Hub{
		logger:     logger,
		bufferSize: bufferSize,
		sessions:   make(map[uuid.UUID]map[*Session]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // origin policy is handled by the CORS layer
			},
		},
	}
}

// Upgrade upgrades an HTTP request to a websocket connection
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return h.upgrader.Upgrade(w, r, nil)
}

// Register creates a session for the user and adds it to the registry.
// topics selects the broadcast topics the session receives; nil or
// empty subscribes it to all of them.
func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn, topics []string) *Session {
	s := &Session{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, h.bufferSize),
	}
	if len(topics) > 0 {
		s.topics = make(map[string]bool, len(topics))
		for _, topic := range topics {
			s.topics[topic] = true
		}
	}

	h.mu.Lock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*Session]bool)
	}
	h.sessions[userID][s] = true
	total := len(h.sessions[userID])
	h.mu.Unlock()

	h.logger.Info("session registered",
		zap.String("user_id", userID.String()),
		zap.Int("user_sessions", total))
	return s
}

// Unregister removes the session from the registry and closes it.
// Further fan-out to it is dropped without error.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if set, ok := h.sessions[s.userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, s.userID)
		}
	}
	h.mu.Unlock()

	s.close()
}

// PublishUser delivers an event to every live session of a user
func (h *Hub) PublishUser(userID uuid.UUID, event *domain.StateEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal state event", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		h.deliver(s, data)
	}
}

// PublishBroadcast delivers an event to every session subscribed to the topic
func (h *Hub) PublishBroadcast(topic string, event *domain.StateEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal state event", zap.Error(err))
		return
	}

	h.mu.RLock()
	var targets []*Session
	for _, set := range h.sessions {
		for s := range set {
			if s.topics == nil || s.topics[topic] {
				targets = append(targets, s)
			}
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		h.deliver(s, data)
	}
}

// SessionCount returns the number of live sessions across all users
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, set := range h.sessions {
		count += len(set)
	}
	return count
}

// deliver enqueues data on the session's bounded buffer. A full buffer
// means the consumer is too slow; the session is torn down server-side
// and the client must resubscribe.
func (h *Hub) deliver(s *Session, data []byte) {
	if !s.enqueue(data) {
		h.logger.Warn("session send buffer exceeded, closing session",
			zap.String("user_id", s.userID.String()),
			zap.Int("buffer_size", h.bufferSize))
		h.Unregister(s)
	}
}

// enqueue places data on the bounded send buffer. It reports false on
// overflow; delivery to an already-closed session is silently dropped.
func (s *Session) enqueue(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// close shuts the session down exactly once
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
	}
}

// WritePump drains the send buffer onto the websocket connection and
// keeps the peer alive with pings. Runs in its own goroutine per session.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.hub.Unregister(s)
	}()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// ReadPump discards inbound messages; the loop exists to detect
// disconnects and answer pongs. Runs in its own goroutine per session.
func (s *Session) ReadPump() {
	defer s.hub.Unregister(s)

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
