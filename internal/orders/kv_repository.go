package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/storage"
	"go.uber.org/zap"
)

const keyPrefix = "orders_"

// Key returns the storage key of a user's order list.
func Key(userID string) string {
	return keyPrefix + owner(userID)
}

func owner(userID string) string {
	if userID == "" {
		return domain.AnonymousUserID
	}
	return userID
}

// KVRepository keeps each user's orders as one JSON list in a key-value store.
// An empty list is stored as an absent key.
type KVRepository struct {
	store  storage.Store
	logger *zap.Logger
	mu     sync.Mutex
}

func NewKVRepository(store storage.Store, logger *zap.Logger) *KVRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVRepository{store: store, logger: logger}
}

func (r *KVRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx, order.UserID)
	if err != nil {
		return err
	}
	return r.save(ctx, order.UserID, append([]domain.Order{*order}, list...))
}

func (r *KVRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, userID)
}

func (r *KVRepository) UpdateStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == orderID {
			list[i].Status = status
			return r.save(ctx, userID, list)
		}
	}
	return ErrOrderNotFound
}

func (r *KVRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Remove(ctx, Key(userID)); err != nil {
		return fmt.Errorf("remove orders: %w", err)
	}
	return nil
}

func (r *KVRepository) Users(ctx context.Context) ([]string, error) {
	scanner, ok := r.store.(storage.Scanner)
	if !ok {
		return nil, errors.New("order store cannot list keys")
	}
	keys, err := scanner.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(keys))
	for _, k := range keys {
		users = append(users, strings.TrimPrefix(k, keyPrefix))
	}
	return users, nil
}

func (r *KVRepository) load(ctx context.Context, userID string) ([]domain.Order, error) {
	var list []domain.Order
	err := storage.GetJSON(ctx, r.store, Key(userID), &list)
	switch {
	case err == nil:
		return list, nil
	case errors.Is(err, storage.ErrKeyNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrCorrupt):
		r.logger.Warn("discarding unreadable order list", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	default:
		return nil, fmt.Errorf("load orders: %w", err)
	}
}

func (r *KVRepository) save(ctx context.Context, userID string, list []domain.Order) error {
	if len(list) == 0 {
		return r.store.Remove(ctx, Key(userID))
	}
	if err := storage.SetJSON(ctx, r.store, Key(userID), list); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}
