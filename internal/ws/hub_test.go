package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/boostmart/boostmart/internal/domain"
)

func newTestClient(buffer int) *Client {
	return &Client{send: make(chan []byte, buffer)}
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case payload := <-client.send:
		var event Event
		assert.NoError(t, json.Unmarshal(payload, &event))
		return event
	default:
		t.Fatal("expected an event in the send buffer")
		return Event{}
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub()
	subscriber := newTestClient(16)
	other := newTestClient(16)
	hub.Register(42, subscriber)
	hub.Register(99, other)

	hub.Broadcast(42, Event{Type: "status", OrderID: 42, Status: domain.OrderStatusInProgress})

	event := receive(t, subscriber)
	assert.Equal(t, "status", event.Type)
	assert.Equal(t, 42, event.OrderID)
	assert.Equal(t, domain.OrderStatusInProgress, event.Status)
	assert.Empty(t, other.send, "clients in other rooms must not see the event")
}

func TestBroadcastToUnknownRoom(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Broadcast(7, Event{Type: "status", OrderID: 7, Status: domain.OrderStatusPending})
	})
}

func TestBroadcastDropsOnFullBuffer(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(1)
	hub.Register(42, slow)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(42, Event{Type: "status", OrderID: 42, Status: domain.OrderStatusPending})
		hub.Broadcast(42, Event{Type: "status", OrderID: 42, Status: domain.OrderStatusInProgress})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full send buffer")
	}
	assert.Len(t, slow.send, 1)
}

func TestUnregister(t *testing.T) {
	hub := NewHub()
	client := newTestClient(16)
	hub.Register(42, client)
	hub.Unregister(42, client)

	hub.Broadcast(42, Event{Type: "status", OrderID: 42, Status: domain.OrderStatusCompleted})
	assert.Empty(t, client.send)

	// Unregistering twice, or from a room that never existed, is a no-op.
	assert.NotPanics(t, func() {
		hub.Unregister(42, client)
		hub.Unregister(99, client)
	})
}

func TestOrderChanged(t *testing.T) {
	hub := NewHub()
	client := newTestClient(16)
	hub.Register(42, client)

	hub.OrderChanged(&domain.Order{ID: 42, Status: domain.OrderStatusCompleted})

	event := receive(t, client)
	assert.Equal(t, "status", event.Type)
	assert.Equal(t, 42, event.OrderID)
	assert.Equal(t, domain.OrderStatusCompleted, event.Status)
	assert.Nil(t, event.Message)
}

func TestMessageAppended(t *testing.T) {
	hub := NewHub()
	client := newTestClient(16)
	hub.Register(42, client)

	sentAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	hub.MessageAppended(
		&domain.Order{ID: 42, Status: domain.OrderStatusInProgress},
		&domain.Message{
			ID:         "3f1e9c2a-7d44-4b8e-9f0a-1c2d3e4f5a6b",
			SenderID:   2,
			SenderName: "booster1",
			Content:    "starting tonight",
			SentAt:     sentAt,
		},
	)

	event := receive(t, client)
	assert.Equal(t, "message", event.Type)
	assert.Equal(t, 42, event.OrderID)
	assert.Equal(t, domain.OrderStatusInProgress, event.Status)
	if assert.NotNil(t, event.Message) {
		assert.Equal(t, "3f1e9c2a-7d44-4b8e-9f0a-1c2d3e4f5a6b", event.Message.ID)
		assert.Equal(t, 2, event.Message.SenderID)
		assert.Equal(t, "booster1", event.Message.SenderName)
		assert.Equal(t, "starting tonight", event.Message.Content)
		assert.Equal(t, sentAt.Format(time.RFC3339), event.Message.SentAt)
	}
}
