package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub manages WebSocket connections and fans session events out to
// subscribed observers. Delivery is best-effort: a slow observer drops
// messages instead of blocking the tracking path.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection   // connection id -> connection
	sessions    map[string][]uuid.UUID      // session id -> subscriber connection ids
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*Connection),
		sessions:    make(map[string][]uuid.UUID),
		logger:      logger.With().Str("component", "ws_hub").Logger(),
	}
}

// RegisterConnection adds a connection under a fresh id and returns it.
func (h *Hub) RegisterConnection(conn *Connection) uuid.UUID {
	id := uuid.New()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[id] = conn
	h.logger.Info().Str("conn_id", id.String()).Msg("connection registered")
	return id
}

// UnregisterConnection closes and removes a connection and all its
// subscriptions.
func (h *Hub) UnregisterConnection(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[connID]; exists {
		conn.Close()
		delete(h.connections, connID)
		h.logger.Info().Str("conn_id", connID.String()).Msg("connection unregistered")
	}

	for sessionID, subs := range h.sessions {
		for i, id := range subs {
			if id == connID {
				h.sessions[sessionID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Subscribe attaches a connection to a session feed.
func (h *Hub) Subscribe(sessionID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.sessions[sessionID]
	for _, id := range subs {
		if id == connID {
			return // already subscribed
		}
	}
	h.sessions[sessionID] = append(subs, connID)
}

// Unsubscribe detaches a connection from a session feed.
func (h *Hub) Unsubscribe(sessionID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.sessions[sessionID]
	for i, id := range subs {
		if id == connID {
			h.sessions[sessionID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

// BroadcastToSession sends a message to every observer of a session.
func (h *Hub) BroadcastToSession(sessionID string, msg Message) {
	h.mu.RLock()
	subs := append([]uuid.UUID(nil), h.sessions[sessionID]...)
	h.mu.RUnlock()

	for _, connID := range subs {
		h.mu.RLock()
		conn, exists := h.connections[connID]
		h.mu.RUnlock()
		if !exists {
			continue
		}
		if err := conn.Send(msg); err != nil {
			h.logger.Warn().Err(err).
				Str("conn_id", connID.String()).
				Str("session_id", sessionID).
				Msg("dropping session event for slow observer")
		}
	}
}

// PublishSessionEvent marshals a payload and broadcasts it on the session
// feed. Marshal failures are logged and swallowed: publishing never fails
// the tracking path.
func (h *Hub) PublishSessionEvent(sessionID, eventType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn().Err(err).Str("event", eventType).Msg("marshal session event")
		return
	}
	h.BroadcastToSession(sessionID, Message{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   raw,
	})
}

// Connection represents a WebSocket connection with a send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 256),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump sends messages from the send queue.
func (c *Connection) WritePump() {
	defer c.conn.Close()

	for msg := range c.sendCh {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn().Err(err).Msg("write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump receives messages and calls the handler.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	// Read deadline of 60s, extended on pong
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}

		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("message handler error")
		}
	}
}

var (
	ErrConnectionClosed = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull    = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
