package orders

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOrder(id, userID string, placed time.Time) *domain.Order {
	return &domain.Order{
		ID:     id,
		Number: "PE-000001-001",
		UserID: userID,
		Items: []domain.CartItem{{
			ID:        "line-1",
			ProductID: "margherita",
			Quantity:  2,
			Currency:  domain.CurrencyNOK,
			Price:     decimal.NewFromInt(298),
		}},
		TotalPrice:     decimal.NewFromInt(298),
		Currency:       domain.CurrencyNOK,
		DeliveryMethod: domain.DeliveryMethodPickup,
		Location:       "Oslo",
		Date:           placed,
		EstimatedTime:  EstimatedTime(placed, domain.DeliveryMethodPickup),
		Status:         domain.OrderStatusPreparing,
		OrderLanguage:  domain.LanguageNorwegian,
	}
}

func TestKVRepository_CreateAndListNewestFirst(t *testing.T) {
	repo := NewKVRepository(storage.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()
	placed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTestOrder("o1", "a@b.no", placed)))
	require.NoError(t, repo.Create(ctx, newTestOrder("o2", "a@b.no", placed.Add(time.Hour))))

	list, err := repo.ListByUser(ctx, "a@b.no")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o2", list[0].ID)
	assert.Equal(t, "o1", list[1].ID)

	// timestamps come back as real times
	assert.True(t, placed.Equal(list[1].Date))
	assert.True(t, placed.Add(20*time.Minute).Equal(list[1].EstimatedTime))
	assert.True(t, decimal.NewFromInt(298).Equal(list[1].Items[0].Price))
}

func TestKVRepository_UpdateStatus(t *testing.T) {
	repo := NewKVRepository(storage.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTestOrder("o1", "u", time.Now())))

	require.NoError(t, repo.UpdateStatus(ctx, "u", "o1", domain.OrderStatusReady))
	list, err := repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReady, list[0].Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "u", "missing", domain.OrderStatusReady), ErrOrderNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "other", "o1", domain.OrderStatusReady), ErrOrderNotFound)
}

func TestKVRepository_DeleteRemovesKey(t *testing.T) {
	store := storage.NewMemoryStore()
	repo := NewKVRepository(store, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTestOrder("o1", "a@b.no", time.Now())))

	require.NoError(t, repo.DeleteByUser(ctx, "a@b.no"))

	_, err := store.Get(ctx, "orders_a@b.no")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	list, err := repo.ListByUser(ctx, "a@b.no")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestKVRepository_CorruptListIsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, Key("u"), []byte(`[{"date": 12}`)))

	repo := NewKVRepository(store, zap.NewNop())
	list, err := repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestKVRepository_AnonymousFallback(t *testing.T) {
	store := storage.NewMemoryStore()
	repo := NewKVRepository(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestOrder("o1", "", time.Now())))
	_, err := store.Get(ctx, "orders_anonymous")
	assert.NoError(t, err)

	users, err := repo.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"anonymous"}, users)
}

type plainStore struct{ storage.Store }

func TestKVRepository_UsersNeedsScanner(t *testing.T) {
	repo := NewKVRepository(plainStore{storage.NewMemoryStore()}, zap.NewNop())
	_, err := repo.Users(context.Background())
	assert.Error(t, err)
}
