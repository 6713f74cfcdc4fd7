package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

func (c *Credentials) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

// PostgresRepository stores one row per order.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(ctx context.Context, cred *Credentials) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", cred.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
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

func (r *PostgresRepository) Create(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, order_number, user_id, items, total_price, currency, delivery_method,
	              address, location, placed_at, estimated_time, status, order_language)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.Number,
		owner(order.UserID),
		itemsJSON,
		order.TotalPrice,
		order.Currency,
		order.DeliveryMethod,
		order.Address,
		order.Location,
		order.Date,
		order.EstimatedTime,
		order.Status,
		order.OrderLanguage)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: duplicate order id %s", ErrInvalidOrder, order.ID)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT id, order_number, user_id, items, total_price, currency, delivery_method,
	                 address, location, placed_at, estimated_time, status, order_language
	          FROM orders WHERE user_id = $1 ORDER BY placed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, owner(userID))
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var list []domain.Order
	for rows.Next() {
		var o domain.Order
		var itemsJSON []byte
		if err := rows.Scan(
			&o.ID,
			&o.Number,
			&o.UserID,
			&itemsJSON,
			&o.TotalPrice,
			&o.Currency,
			&o.DeliveryMethod,
			&o.Address,
			&o.Location,
			&o.Date,
			&o.EstimatedTime,
			&o.Status,
			&o.OrderLanguage,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		status, orderID, owner(userID))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE user_id = $1`,
		owner(userID)); err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Users(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM orders WHERE status IN ('pending', 'preparing', 'ready') ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
