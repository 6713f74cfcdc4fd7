package orders

import (
	"context"
	"errors"

	"github.com/fjod/go_pizza/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order has no items")
	ErrInvalidOrder  = errors.New("invalid order")
)

// Repository stores each user's orders. ListByUser returns newest first.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) error
	DeleteByUser(ctx context.Context, userID string) error
	// Users lists the users whose orders the sweeper should evaluate.
	Users(ctx context.Context) ([]string, error)
}
