package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusInDelivery OrderStatus = "inDelivery"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
)

// rank orders the statuses along the lifecycle; transitions only move forward.
var rank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusPreparing:  1,
	OrderStatusReady:      2,
	OrderStatusInDelivery: 3,
	OrderStatusDelivered:  4,
	OrderStatusCompleted:  5,
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

// IsActive reports whether the order is still in progress for the customer.
func (s OrderStatus) IsActive() bool {
	return s == OrderStatusPending || s == OrderStatusPreparing || s == OrderStatusReady || s == OrderStatusInDelivery
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving from current to next keeps the lifecycle monotonic.
func CanTransitionTo(current, next OrderStatus) bool {
	from, ok := rank[current]
	if !ok {
		return false
	}
	to, ok := rank[next]
	if !ok {
		return false
	}
	return to > from
}

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryMethodDelivery || m == DeliveryMethodPickup
}

// Order is the snapshot taken at checkout. Only Status changes after creation.
type Order struct {
	ID             string          `json:"id"`
	Number         string          `json:"orderNumber"`
	UserID         string          `json:"userId"`
	Items          []CartItem      `json:"items"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Currency       Currency        `json:"currency"`
	DeliveryMethod DeliveryMethod  `json:"deliveryMethod"`
	Address        string          `json:"address,omitempty"`
	Location       string          `json:"location"`
	Date           time.Time       `json:"date"`
	EstimatedTime  time.Time       `json:"estimatedTime"`
	Status         OrderStatus     `json:"status"`
	OrderLanguage  Language        `json:"orderLanguage"`
}
