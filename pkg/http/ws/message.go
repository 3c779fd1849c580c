package ws

import "encoding/json"

// MessageType constants for the session event feed protocol.
const (
	// Client -> Server
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"

	// Server -> Client
	TypeSessionStarted     = "session_started"
	TypeChallengeStarted   = "challenge_started"
	TypeChallengeCompleted = "challenge_completed"
	TypeInteraction        = "interaction"
	TypeSessionEnded       = "session_ended"
	TypeSubscribed         = "subscribed"
	TypeError              = "error"
	TypePing               = "ping"
	TypePong               = "pong"
)

// Message wraps all WebSocket payloads with type and the session topic.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// SubscribePayload selects the session feed to follow.
type SubscribePayload struct {
	SessionID string `json:"session_id"`
}

// ErrorPayload reports a protocol-level problem to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
