package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteRepository reads the price table from a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// LoadCatalog builds a Catalog from every row of product_prices.
func (r *SQLiteRepository) LoadCatalog(ctx context.Context) (*Catalog, error) {
	query := `
		SELECT p.id, p.category, p.bundle_units, pp.language, pp.variant, pp.price
		FROM products p
		JOIN product_prices pp ON pp.product_id = p.id
		ORDER BY p.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.ProductPriceEntry)
	var order []string
	for rows.Next() {
		var (
			id, category, lang, variant, price string
			units                              int
		)
		if err := rows.Scan(&id, &category, &units, &lang, &variant, &price); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}

		amount, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q for %s: %w", price, id, err)
		}

		entry, ok := byID[id]
		if !ok {
			entry = &domain.ProductPriceEntry{
				ID:          id,
				Category:    domain.Category(category),
				BundleUnits: units,
				Prices:      make(map[domain.Language]map[domain.Variant]decimal.Decimal),
			}
			byID[id] = entry
			order = append(order, id)
		}
		l := domain.Language(lang)
		if entry.Prices[l] == nil {
			entry.Prices[l] = make(map[domain.Variant]decimal.Decimal)
		}
		entry.Prices[l][domain.Variant(variant)] = amount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	entries := make([]domain.ProductPriceEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, *byID[id])
	}
	return New(entries), nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
