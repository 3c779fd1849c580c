package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dianoite/quiz-analytics/pkg/http/ws"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Observers are dashboards on trusted origins; tighten before
		// exposing the feed publicly.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler upgrades observers onto the live session event feed and routes
// their subscribe/unsubscribe messages.
type WSHandler struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewWSHandler creates the WebSocket handler for session feeds.
func NewWSHandler(hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger.With().Str("component", "analytics_ws").Logger(),
	}
}

// HandleWebSocket handles GET /ws/sessions
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	connID := h.hub.RegisterConnection(wsConn)

	go wsConn.WritePump()
	go func() {
		defer h.hub.UnregisterConnection(connID)
		wsConn.ReadPump(func(msg ws.Message) error {
			return h.handleMessage(connID, wsConn, msg)
		})
	}()
}

func (h *WSHandler) handleMessage(connID uuid.UUID, conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeSubscribe:
		var payload ws.SubscribePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.SessionID == "" {
			return h.sendError(conn, msg.RequestID, "invalid_payload", "subscribe requires session_id")
		}
		h.hub.Subscribe(payload.SessionID, connID)
		return conn.Send(ws.Message{
			Type:      ws.TypeSubscribed,
			SessionID: payload.SessionID,
			RequestID: msg.RequestID,
		})

	case ws.TypeUnsubscribe:
		var payload ws.SubscribePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.SessionID == "" {
			return h.sendError(conn, msg.RequestID, "invalid_payload", "unsubscribe requires session_id")
		}
		h.hub.Unsubscribe(payload.SessionID, connID)
		return nil

	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})

	default:
		return h.sendError(conn, msg.RequestID, "unknown_message_type", "unsupported message type")
	}
}

func (h *WSHandler) sendError(conn *ws.Connection, requestID, code, message string) error {
	raw, err := json.Marshal(ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	return conn.Send(ws.Message{Type: ws.TypeError, Payload: raw, RequestID: requestID})
}
