package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/pricing"
	"github.com/fjod/go_pizza/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct {
	*storage.MemoryStore
	setErr error
	getErr error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func TestService_EmptyCartWhenNothingStored(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), zap.NewNop())

	c, err := svc.Get(context.Background(), "a@b.no")
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	assert.Equal(t, "a@b.no", c.UserID())
}

func TestService_PersistsAfterEachMutation(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	line, err := svc.AddItem(ctx, "a@b.no", lineItem(t, "margherita", domain.LanguageNorwegian, pricing.PizzaOptions{}, 2))
	require.NoError(t, err)

	var stored domain.Cart
	require.NoError(t, storage.GetJSON(ctx, store, "cart_a@b.no", &stored))
	require.Len(t, stored.Items, 1)
	assert.True(t, decimal.NewFromInt(298).Equal(stored.Items[0].Price))

	require.NoError(t, svc.UpdateQuantity(ctx, "a@b.no", line.ID, 3))
	c, err := svc.Get(ctx, "a@b.no")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(447).Equal(c.TotalPrice()))

	require.NoError(t, svc.SetOpen(ctx, "a@b.no", true))
	c, err = svc.Get(ctx, "a@b.no")
	require.NoError(t, err)
	assert.True(t, c.IsOpen())

	require.NoError(t, svc.Clear(ctx, "a@b.no"))
	c, err = svc.Get(ctx, "a@b.no")
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	assert.False(t, c.IsOpen())
}

func TestService_RemoveItem(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	line, err := svc.AddItem(ctx, "u", lineItem(t, "garlic", domain.LanguageEnglish, pricing.DipOptions{}, 1))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, "u", line.ID))
	assert.ErrorIs(t, svc.RemoveItem(ctx, "u", line.ID), ErrItemNotFound)
}

func TestService_CorruptDataIsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, Key("a@b.no"), []byte("{not json")))

	svc := NewService(store, zap.NewNop())
	c, err := svc.Get(ctx, "a@b.no")
	require.NoError(t, err)
	assert.Zero(t, c.Len())

	_, err = svc.AddItem(ctx, "a@b.no", lineItem(t, "gelato", domain.LanguageEnglish, pricing.DessertOptions{}, 1))
	require.NoError(t, err)
	c, err = svc.Get(ctx, "a@b.no")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestService_StoreErrors(t *testing.T) {
	ctx := context.Background()

	broken := &failingStore{MemoryStore: storage.NewMemoryStore(), getErr: errors.New("redis down")}
	_, err := NewService(broken, zap.NewNop()).Get(ctx, "u")
	assert.Error(t, err)

	readOnly := &failingStore{MemoryStore: storage.NewMemoryStore(), setErr: errors.New("disk full")}
	svc := NewService(readOnly, zap.NewNop())
	_, err = svc.AddItem(ctx, "u", lineItem(t, "gelato", domain.LanguageEnglish, pricing.DessertOptions{}, 1))
	assert.Error(t, err)

	c, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestService_ConcurrentAddsMerge(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()
	item := lineItem(t, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "u", item)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 20, c.TotalItems())
	assert.True(t, decimal.NewFromInt(17*20).Equal(c.TotalPrice()))
}

func TestService_UsersAreIsolated(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "a", lineItem(t, "sprite", domain.LanguageEnglish, pricing.DrinkOptions{}, 1))
	require.NoError(t, err)

	c, err := svc.Get(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, c.Len())

	require.NoError(t, svc.DeleteForUser(ctx, "a"))
	_, err = store.Get(ctx, Key("a"))
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cart_a@b.no", Key("a@b.no"))
	assert.Equal(t, "cart_anonymous", Key(""))
}

func TestStoredCartUsesStorefrontFieldNames(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.SetOpen(ctx, "u", true))
	raw, err := store.Get(ctx, Key("u"))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, true, fields["isCartOpen"])
}

func TestService_RemoveOrdered(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u", lineItem(t, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1))
	require.NoError(t, err)
	snap, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	late, err := svc.AddItem(ctx, "u", lineItem(t, "tiramisu", domain.LanguageEnglish, pricing.DessertOptions{}, 1))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveOrdered(ctx, "u", snap.Items()))

	c, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, late.ID, c.Items()[0].ID)
}
