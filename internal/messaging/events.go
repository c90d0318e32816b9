package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Order event types.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload published for order lifecycle changes.
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        int64     `json:"order_id"`
	Number         string    `json:"order_number"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Total          string    `json:"total"`
	Items          int       `json:"items"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Key partitions events by order so one order's events stay ordered.
func (e OrderEvent) Key() []byte {
	return []byte(fmt.Sprintf("order-%d", e.OrderID))
}

// PublishOrderEvent encodes and publishes e.
func PublishOrderEvent(ctx context.Context, c Client, e OrderEvent) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	return c.Publish(ctx, e.Key(), payload)
}

// DecodeOrderEvent parses a consumed message.
func DecodeOrderEvent(msg Message) (OrderEvent, error) {
	var e OrderEvent
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if e.Type == "" {
		return OrderEvent{}, fmt.Errorf("decode order event: missing type")
	}
	return e, nil
}
