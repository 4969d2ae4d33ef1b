// Package notify delivers order lifecycle events to an external webhook.
// Delivery is best-effort with bounded retries; domain-rule rejections never
// reach here, only committed events do.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/boostmart/boostmart/internal/domain"
	"github.com/boostmart/boostmart/pkg/clients"
	"github.com/boostmart/boostmart/pkg/workerpool"
	"go.uber.org/zap"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

type Event struct {
	Kind       string `json:"kind"` // "order" or "message"
	OrderID    int    `json:"order_id"`
	Status     string `json:"status"`
	Price      int64  `json:"price,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type Notifier struct {
	url        string
	client     clients.HTTPClientI
	workerPool workerpool.WorkerPoolI
}

func New(url string, client clients.HTTPClientI) *Notifier {
	return &Notifier{
		url:        url,
		client:     client,
		workerPool: workerpool.NewWorkerPool(4),
	}
}

// OrderChanged implements orderservice.EventSink.
func (n *Notifier) OrderChanged(order *domain.Order) {
	n.enqueue(Event{
		Kind:       "order",
		OrderID:    order.ID,
		Status:     order.Status,
		Price:      order.Price,
		OccurredAt: time.Now().Format(time.RFC3339),
	})
}

// MessageAppended implements orderservice.EventSink.
func (n *Notifier) MessageAppended(order *domain.Order, message *domain.Message) {
	n.enqueue(Event{
		Kind:       "message",
		OrderID:    order.ID,
		Status:     order.Status,
		MessageID:  message.ID,
		SenderName: message.SenderName,
		OccurredAt: message.SentAt.Format(time.RFC3339),
	})
}

func (n *Notifier) enqueue(event Event) {
	err := n.workerPool.AddTask(context.Background(), func() error {
		return n.Deliver(context.Background(), event)
	})
	if err != nil {
		zap.L().Error("can't enqueue webhook event", zap.Error(err))
	}
}

// Deliver posts the event, retrying transient failures with linear backoff.
func (n *Notifier) Deliver(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err == nil {
			statusCode := resp.StatusCode
			resp.Body.Close()
			if statusCode < http.StatusInternalServerError {
				return nil
			}
			err = fmt.Errorf("webhook returned status %d", statusCode)
		}

		if attempt < maxRetries {
			zap.L().Warn("webhook delivery failed, retrying",
				zap.Int("attempt", attempt), zap.Error(err))
			time.Sleep(retryInterval * time.Duration(attempt))
			continue
		}
		return fmt.Errorf("failed to deliver event after %d retries: %w", maxRetries, err)
	}
	return nil
}

func (n *Notifier) Close() {
	n.workerPool.Close()
}
