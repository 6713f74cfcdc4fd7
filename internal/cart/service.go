package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key returns the storage key of a user's cart.
func Key(userID string) string {
	if userID == "" {
		userID = domain.AnonymousUserID
	}
	return "cart_" + userID
}

// Service loads, mutates and persists carts. Every mutation is written back immediately.
type Service struct {
	store  storage.Store
	logger *zap.Logger
	sfg    singleflight.Group // collapses concurrent loads of one cart

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Get returns the user's cart. Absent or unreadable data yields an empty cart.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		return s.load(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return FromSnapshot(v.(domain.Cart)), nil
}

func (s *Service) load(ctx context.Context, userID string) (domain.Cart, error) {
	var snap domain.Cart
	err := storage.GetJSON(ctx, s.store, Key(userID), &snap)
	switch {
	case err == nil:
		snap.UserID = userID
		return snap, nil
	case errors.Is(err, storage.ErrKeyNotFound):
		return domain.Cart{UserID: userID}, nil
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("discarding unreadable cart", zap.String("user_id", userID), zap.Error(err))
		return domain.Cart{UserID: userID}, nil
	default:
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
}

func (s *Service) AddItem(ctx context.Context, userID string, item domain.CartItem) (domain.CartItem, error) {
	var line domain.CartItem
	err := s.mutate(ctx, userID, func(c *Cart) error {
		var err error
		line, err = c.AddItem(item)
		return err
	})
	return line, err
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.mutate(ctx, userID, func(c *Cart) error {
		if !c.RemoveItem(itemID) {
			return ErrItemNotFound
		}
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	return s.mutate(ctx, userID, func(c *Cart) error {
		return c.UpdateQuantity(itemID, quantity)
	})
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

// RemoveOrdered settles a checkout against the stored cart, leaving lines the order never saw.
func (s *Service) RemoveOrdered(ctx context.Context, userID string, ordered []domain.CartItem) error {
	return s.mutate(ctx, userID, func(c *Cart) error {
		c.RemoveOrdered(ordered)
		return nil
	})
}

func (s *Service) SetOpen(ctx context.Context, userID string, open bool) error {
	return s.mutate(ctx, userID, func(c *Cart) error {
		c.SetOpen(open)
		return nil
	})
}

// DeleteForUser drops the stored cart entirely.
func (s *Service) DeleteForUser(ctx context.Context, userID string) error {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Remove(ctx, Key(userID)); err != nil {
		s.logger.Error("failed to remove cart", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(*Cart) error) error {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	c := FromSnapshot(snap)
	if err := fn(c); err != nil {
		return err
	}
	if err := storage.SetJSON(ctx, s.store, Key(userID), c.Snapshot()); err != nil {
		s.logger.Error("failed to persist cart", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Service) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

