package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("store unavailable")

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// BreakerStore trips after consecutive backend failures and fails fast until the backend recovers.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[[]byte]
}

func NewBreakerStore(inner Store, settings BreakerSettings, logger *zap.Logger) *BreakerStore {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrKeyNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerStore{inner: inner, cb: cb}
}

func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	return b.execute(func() ([]byte, error) { return b.inner.Get(ctx, key) })
}

func (b *BreakerStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.execute(func() ([]byte, error) { return nil, b.inner.Set(ctx, key, value) })
	return err
}

func (b *BreakerStore) Remove(ctx context.Context, key string) error {
	_, err := b.execute(func() ([]byte, error) { return nil, b.inner.Remove(ctx, key) })
	return err
}

// Keys passes through when the wrapped store can enumerate keys.
func (b *BreakerStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	scanner, ok := b.inner.(Scanner)
	if !ok {
		return nil, nil
	}
	var keys []string
	_, err := b.execute(func() ([]byte, error) {
		var err error
		keys, err = scanner.Keys(ctx, prefix)
		return nil, err
	})
	return keys, err
}

func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() ([]byte, error)) ([]byte, error) {
	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return out, err
}
