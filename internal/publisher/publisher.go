// Package publisher emits order lifecycle events.
package publisher

import (
	"context"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
)

type OrderEvent struct {
	Type           string             `json:"event_type"`
	OrderID        string             `json:"order_id"`
	OrderNumber    string             `json:"order_number"`
	UserID         string             `json:"user_id"`
	Status         domain.OrderStatus `json:"status"`
	PreviousStatus domain.OrderStatus `json:"previous_status,omitempty"`
	TotalPrice     decimal.Decimal    `json:"total_price"`
	Currency       domain.Currency    `json:"currency"`
	EstimatedTime  time.Time          `json:"estimated_time"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// OrderPlaced builds the event for a freshly persisted order.
func OrderPlaced(o domain.Order, at time.Time) OrderEvent {
	return newEvent(EventOrderPlaced, o, "", at)
}

func StatusChanged(o domain.Order, from domain.OrderStatus, at time.Time) OrderEvent {
	return newEvent(EventOrderStatusChanged, o, from, at)
}

func newEvent(eventType string, o domain.Order, from domain.OrderStatus, at time.Time) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        o.ID,
		OrderNumber:    o.Number,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: from,
		TotalPrice:     o.TotalPrice,
		Currency:       o.Currency,
		EstimatedTime:  o.EstimatedTime,
		OccurredAt:     at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                             { return nil }
