// Package ws pushes order lifecycle and chat events to connected clients,
// one room per order.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/boostmart/boostmart/internal/domain"
)

type MessagePayload struct {
	ID         string `json:"id"`
	SenderID   int    `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	SentAt     string `json:"sent_at"`
}

type Event struct {
	Type    string          `json:"type"` // "status" or "message"
	OrderID int             `json:"order_id"`
	Status  string          `json:"status,omitempty"`
	Message *MessagePayload `json:"message,omitempty"`
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int]map[*Client]struct{}),
	}
}

func (h *Hub) Register(orderID int, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[orderID] == nil {
		h.rooms[orderID] = make(map[*Client]struct{})
	}
	h.rooms[orderID][client] = struct{}{}
}

func (h *Hub) Unregister(orderID int, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[orderID] == nil {
		return
	}
	delete(h.rooms[orderID], client)
	if len(h.rooms[orderID]) == 0 {
		delete(h.rooms, orderID)
	}
}

// Broadcast never blocks: clients with a full send buffer drop the event.
func (h *Hub) Broadcast(orderID int, event Event) {
	payload, _ := json.Marshal(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[orderID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}

// OrderChanged implements orderservice.EventSink.
func (h *Hub) OrderChanged(order *domain.Order) {
	h.Broadcast(order.ID, Event{
		Type:    "status",
		OrderID: order.ID,
		Status:  order.Status,
	})
}

// MessageAppended implements orderservice.EventSink.
func (h *Hub) MessageAppended(order *domain.Order, message *domain.Message) {
	h.Broadcast(order.ID, Event{
		Type:    "message",
		OrderID: order.ID,
		Status:  order.Status,
		Message: &MessagePayload{
			ID:         message.ID,
			SenderID:   message.SenderID,
			SenderName: message.SenderName,
			Content:    message.Content,
			SentAt:     message.SentAt.Format(time.RFC3339),
		},
	})
}
