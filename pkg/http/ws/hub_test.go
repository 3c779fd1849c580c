package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newQueuedConnection() *Connection {
	return NewConnection(nil, zerolog.Nop())
}

func drain(c *Connection) []Message {
	var msgs []Message
	for {
		select {
		case m := <-c.sendCh:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	subscriber := newQueuedConnection()
	bystander := newQueuedConnection()
	subID := hub.RegisterConnection(subscriber)
	hub.RegisterConnection(bystander)

	hub.Subscribe("sess-1", subID)

	hub.BroadcastToSession("sess-1", Message{Type: TypeSessionStarted, SessionID: "sess-1"})

	got := drain(subscriber)
	assert.Len(t, got, 1)
	assert.Equal(t, TypeSessionStarted, got[0].Type)
	assert.Empty(t, drain(bystander))
}

func TestSubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	conn := newQueuedConnection()
	id := hub.RegisterConnection(conn)

	hub.Subscribe("sess-1", id)
	hub.Subscribe("sess-1", id)

	hub.BroadcastToSession("sess-1", Message{Type: TypeSessionStarted})
	assert.Len(t, drain(conn), 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	conn := newQueuedConnection()
	id := hub.RegisterConnection(conn)

	hub.Subscribe("sess-1", id)
	hub.Unsubscribe("sess-1", id)

	hub.BroadcastToSession("sess-1", Message{Type: TypeSessionStarted})
	assert.Empty(t, drain(conn))
}

func TestBroadcastToUnknownSessionIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.BroadcastToSession("nobody-listens", Message{Type: TypeSessionStarted})
}

func TestBroadcastSkipsUnknownConnections(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	// A subscription for a connection id that was never registered.
	hub.Subscribe("sess-1", uuid.New())
	hub.BroadcastToSession("sess-1", Message{Type: TypeSessionStarted})
}

func TestPublishSessionEventMarshalsPayload(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	conn := newQueuedConnection()
	id := hub.RegisterConnection(conn)
	hub.Subscribe("sess-1", id)

	hub.PublishSessionEvent("sess-1", "challenge_completed", map[string]interface{}{"score": 100})

	got := drain(conn)
	assert.Len(t, got, 1)
	assert.Equal(t, "challenge_completed", got[0].Type)
	assert.Equal(t, "sess-1", got[0].SessionID)

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(got[0].Payload, &payload))
	assert.Equal(t, 100.0, payload["score"])
}

func TestSendOnFullQueue(t *testing.T) {
	conn := newQueuedConnection()

	for i := 0; i < cap(conn.sendCh); i++ {
		assert.NoError(t, conn.Send(Message{Type: TypePing}))
	}
	assert.ErrorIs(t, conn.Send(Message{Type: TypePing}), ErrSendQueueFull)
}
