package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakyStore struct {
	m     sync.Mutex
	err   error
	calls int
	inner *MemoryStore
}

func (f *flakyStore) fail() error {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls++
	return f.err
}

func (f *flakyStore) setErr(err error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.err = err
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.inner.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.inner.Set(ctx, key, value)
}

func (f *flakyStore) Remove(ctx context.Context, key string) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.inner.Remove(ctx, key)
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	inner := &flakyStore{inner: NewMemoryStore()}
	store := NewBreakerStore(inner, BreakerSettings{Name: "kv"}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	require.NoError(t, store.Remove(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestBreakerStore_MissesDoNotTrip(t *testing.T) {
	inner := &flakyStore{inner: NewMemoryStore()}
	store := NewBreakerStore(inner, BreakerSettings{Name: "kv", FailureThreshold: 2}, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := store.Get(context.Background(), "absent")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestBreakerStore_OpensAndRecovers(t *testing.T) {
	inner := &flakyStore{inner: NewMemoryStore(), err: errors.New("connection refused")}
	store := NewBreakerStore(inner, BreakerSettings{
		Name:             "kv",
		FailureThreshold: 3,
		OpenTimeout:      50 * time.Millisecond,
	}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Error(t, store.Set(ctx, "k", []byte("v")))
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	err := store.Set(ctx, "k", []byte("v"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, inner.calls)

	inner.setErr(nil)
	require.Eventually(t, func() bool {
		return store.Set(ctx, "k", []byte("v")) == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestBreakerStore_Keys(t *testing.T) {
	mem := NewMemoryStore()
	require.NoError(t, mem.Set(context.Background(), "orders_a", []byte("[]")))

	store := NewBreakerStore(mem, BreakerSettings{Name: "kv"}, nil)
	keys, err := store.Keys(context.Background(), "orders_")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders_a"}, keys)

	plain := NewBreakerStore(&flakyStore{inner: mem}, BreakerSettings{Name: "kv"}, nil)
	keys, err = plain.Keys(context.Background(), "orders_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
