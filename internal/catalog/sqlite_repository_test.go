package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteRepository {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations("./migrations"))
	return repo
}

func TestLoadCatalog_MatchesBuiltInTable(t *testing.T) {
	repo := setupTestDB(t)

	loaded, err := repo.LoadCatalog(context.Background())
	require.NoError(t, err)

	builtIn := Default()
	assert.Equal(t, builtIn.Products(), loaded.Products())
	assert.Empty(t, loaded.Validate())

	variants := []domain.Variant{
		domain.VariantNormal, domain.VariantLarge,
		domain.VariantSmallDrink, domain.VariantMediumDrink, domain.VariantLargeDrink,
	}
	for _, key := range builtIn.Products() {
		want, _ := builtIn.Entry(key)
		got, ok := loaded.Entry(key)
		require.True(t, ok, key)
		assert.Equal(t, want.Category, got.Category, key)
		assert.Equal(t, want.Units(), got.Units(), key)

		for _, lang := range []domain.Language{domain.LanguageEnglish, domain.LanguageNorwegian} {
			for _, v := range variants {
				wp, wok := builtIn.Lookup(key, lang, v)
				gp, gok := loaded.Lookup(key, lang, v)
				assert.Equal(t, wok, gok, "%s %s %s", key, lang, v)
				assert.True(t, wp.Equal(gp), "%s %s %s", key, lang, v)
			}
		}
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.RunMigrations("./migrations"))
}

func TestLoadCatalog_ContextCancelled(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := repo.LoadCatalog(ctx)
	assert.Error(t, err)
}
