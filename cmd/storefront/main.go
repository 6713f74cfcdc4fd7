package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_pizza/internal/accounts"
	"github.com/fjod/go_pizza/internal/cart"
	"github.com/fjod/go_pizza/internal/catalog"
	"github.com/fjod/go_pizza/internal/checkout"
	"github.com/fjod/go_pizza/internal/config"
	h "github.com/fjod/go_pizza/internal/http"
	"github.com/fjod/go_pizza/internal/i18n"
	"github.com/fjod/go_pizza/internal/logger"
	"github.com/fjod/go_pizza/internal/orders"
	"github.com/fjod/go_pizza/internal/pricing"
	"github.com/fjod/go_pizza/internal/publisher"
	"github.com/fjod/go_pizza/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	shutdownTracing := logger.InitTracing()
	defer shutdownTracing(context.Background())

	if err := run(cfg, l); err != nil {
		l.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, l *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	store, closeStore, err := openStore(ctx, cfg, l)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	priceCatalog, err := loadCatalog(ctx, cfg, l)
	if err != nil {
		return err
	}
	for _, defect := range priceCatalog.Validate() {
		l.Warn("catalog defect", zap.Error(defect))
	}

	var (
		pub   publisher.Publisher = publisher.NoopPublisher{}
		relay *publisher.OutboxRelay
	)
	if len(cfg.KafkaBrokers) > 0 {
		kp := publisher.NewKafkaPublisher(l, cfg.KafkaBrokers...)
		closers = append(closers, func() {
			if err := kp.Close(); err != nil {
				l.Warn("failed to close kafka writer", zap.Error(err))
			}
		})
		pub = kp
		if ob, ok := store.(publisher.OutboxStore); ok {
			outbox := publisher.NewOutbox(ob)
			relay = publisher.NewOutboxRelay(outbox, kp, cfg.OutboxInterval, l)
			pub = outbox
		}
	}

	repo, closeRepo, err := openOrders(ctx, cfg, store, l)
	if err != nil {
		return err
	}
	closers = append(closers, closeRepo)

	texts := i18n.Default()
	engine := pricing.NewEngine(priceCatalog, l)
	carts := cart.NewService(store, l)
	manager := orders.NewManager(repo, pub, l)
	users := accounts.NewService(store, l, carts, manager)
	sessions := checkout.NewSessions(carts, manager, texts, l, cfg.Checkout.ProcessingDelay)

	var wg sync.WaitGroup
	workers, cancelWorkers := context.WithCancel(context.Background())

	sweeper := orders.NewSweeper(manager, cfg.Orders.SweepInterval, l)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(workers)
	}()

	if relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(workers)
		}()
	}

	if len(cfg.KafkaBrokers) > 0 {
		consumer := publisher.NewConsumer(cfg.KafkaGroupID, publisher.LogHandler(l), l, cfg.KafkaBrokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Run(workers)
		}()
		closers = append(closers, func() {
			if err := consumer.Close(); err != nil {
				l.Warn("failed to close kafka reader", zap.Error(err))
			}
		})
	}

	router := h.NewRouter(h.Handlers{
		Catalog:  h.NewCatalogHandler(priceCatalog, engine, texts),
		Cart:     h.NewCartHandler(carts, engine, priceCatalog, texts, cfg.RequestTimeout),
		Auth:     h.NewAuthHandler(users, sessions, texts, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(sessions, users, texts, cfg.RequestTimeout),
		Orders:   h.NewOrdersHandler(manager, texts, cfg.RequestTimeout),
	}, l, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info("storefront listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			cancelWorkers()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	l.Info("shutting down storefront")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}

	cancelWorkers()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		l.Info("background workers stopped cleanly")
	case <-shutdownCtx.Done():
		l.Warn("background workers didn't stop in time")
	}
	return nil
}

// openStore builds the configured key-value backend behind a circuit breaker.
func openStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (storage.Store, func(), error) {
	var (
		inner   storage.Store
		closeFn = func() {}
	)

	switch cfg.Store.Backend {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		inner = storage.NewRedisStore(client, "storefront:", cfg.Store.RedisTTL)
		closeFn = func() { client.Close() }
	case config.StoreMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.Store.MongoURI, cfg.Store.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		inner = storage.NewMongoStore(db)
		closeFn = func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(disconnectCtx); err != nil {
				l.Warn("failed to disconnect mongo", zap.Error(err))
			}
		}
	default:
		return storage.NewMemoryStore(), closeFn, nil
	}

	l.Info("key-value store ready", zap.String("backend", cfg.Store.Backend))
	return storage.NewBreakerStore(inner, storage.BreakerSettings{
		Name:             cfg.Store.Backend,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
	}, l), closeFn, nil
}

func openOrders(ctx context.Context, cfg *config.Config, store storage.Store, l *zap.Logger) (orders.Repository, func(), error) {
	if cfg.Orders.Backend != config.OrdersPostgres {
		return orders.NewKVRepository(store, l), func() {}, nil
	}

	creds := &orders.Credentials{
		Host:              cfg.Orders.DBHost,
		Port:              cfg.Orders.DBPort,
		User:              cfg.Orders.DBUser,
		Password:          cfg.Orders.DBPassword,
		DBName:            cfg.Orders.DBName,
		MigrationsDirPath: cfg.Orders.MigrationsPath,
	}
	repo, err := orders.NewPostgresRepository(ctx, creds)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.RunMigrations(creds); err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("run order migrations: %w", err)
	}
	l.Info("order database migrations completed")
	return repo, func() { repo.Close() }, nil
}

// loadCatalog reads prices from SQLite when a path is configured, otherwise uses the built-in table.
func loadCatalog(ctx context.Context, cfg *config.Config, l *zap.Logger) (*catalog.Catalog, error) {
	if cfg.CatalogDBPath == "" {
		return catalog.Default(), nil
	}

	repo, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		return nil, fmt.Errorf("run catalog migrations: %w", err)
	}
	c, err := repo.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	l.Info("catalog loaded", zap.String("path", cfg.CatalogDBPath), zap.Int("products", len(c.Products())))
	return c, nil
}
