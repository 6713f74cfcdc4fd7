// Package config loads storefront settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"

	OrdersKV       = "kv"
	OrdersPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	HTTPPort        string        `yaml:"http_port"`
	LogLevel        string        `yaml:"log_level"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Store    StoreConfig    `yaml:"store"`
	Orders   OrdersConfig   `yaml:"orders"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Checkout CheckoutConfig `yaml:"checkout"`

	KafkaBrokers          []string      `yaml:"kafka_brokers"`
	KafkaGroupID          string        `yaml:"kafka_group_id"`
	OutboxInterval        time.Duration `yaml:"outbox_interval"`
	CatalogDBPath         string        `yaml:"catalog_db_path"`
	CatalogMigrationsPath string        `yaml:"catalog_migrations_path"`
}

type StoreConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisTTL  time.Duration `yaml:"redis_ttl"`
	MongoURI  string        `yaml:"mongo_uri"`
	MongoDB   string        `yaml:"mongo_db"`
}

type OrdersConfig struct {
	Backend        string        `yaml:"backend"`
	DBHost         string        `yaml:"db_host"`
	DBPort         int           `yaml:"db_port"`
	DBUser         string        `yaml:"db_user"`
	DBPassword     string        `yaml:"db_password"`
	DBName         string        `yaml:"db_name"`
	MigrationsPath string        `yaml:"migrations_path"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

type BreakerConfig struct {
	FailureThreshold uint32        `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

type CheckoutConfig struct {
	ProcessingDelay time.Duration `yaml:"processing_delay"`
}

func defaults() *Config {
	return &Config{
		HTTPPort:        "8080",
		LogLevel:        "info",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Store: StoreConfig{
			Backend:   StoreMemory,
			RedisAddr: "localhost:6379",
			RedisTTL:  0,
			MongoURI:  "mongodb://localhost:27017",
			MongoDB:   "storefront",
		},
		Orders: OrdersConfig{
			Backend:        OrdersKV,
			DBHost:         "localhost",
			DBPort:         5432,
			DBUser:         "postgres",
			DBPassword:     "postgres",
			DBName:         "storefront",
			MigrationsPath: "./internal/orders/migrations",
			SweepInterval:  time.Minute,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		Checkout: CheckoutConfig{
			ProcessingDelay: 1500 * time.Millisecond,
		},
		KafkaGroupID:          "storefront-order-log",
		OutboxInterval:        time.Second,
		CatalogMigrationsPath: "./internal/catalog/migrations",
	}
}

// Load reads CONFIG_FILE when set, then applies environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	c.Store.RedisAddr = getEnv("REDIS_ADDR", c.Store.RedisAddr)
	c.Store.MongoURI = getEnv("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDB = getEnv("MONGO_DB", c.Store.MongoDB)

	c.Orders.Backend = getEnv("ORDERS_BACKEND", c.Orders.Backend)
	c.Orders.DBHost = getEnv("DB_HOST", c.Orders.DBHost)
	c.Orders.DBUser = getEnv("DB_USER", c.Orders.DBUser)
	c.Orders.DBPassword = getEnv("DB_PASSWORD", c.Orders.DBPassword)
	c.Orders.DBName = getEnv("DB_NAME", c.Orders.DBName)
	c.Orders.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Orders.MigrationsPath)

	c.CatalogDBPath = getEnv("CATALOG_DB_PATH", c.CatalogDBPath)
	c.CatalogMigrationsPath = getEnv("CATALOG_MIGRATIONS_PATH", c.CatalogMigrationsPath)
	c.KafkaGroupID = getEnv("KAFKA_GROUP_ID", c.KafkaGroupID)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.KafkaBrokers = splitList(brokers)
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DB_PORT: %w", ErrInvalidConfig, err)
		}
		c.Orders.DBPort = port
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"REQUEST_TIMEOUT", &c.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
		{"REDIS_TTL", &c.Store.RedisTTL},
		{"SWEEP_INTERVAL", &c.Orders.SweepInterval},
		{"BREAKER_OPEN_TIMEOUT", &c.Breaker.OpenTimeout},
		{"CHECKOUT_PROCESSING_DELAY", &c.Checkout.ProcessingDelay},
		{"OUTBOX_INTERVAL", &c.OutboxInterval},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, d.key, err)
		}
		*d.dst = parsed
	}

	if v := os.Getenv("BREAKER_FAILURE_THRESHOLD"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: BREAKER_FAILURE_THRESHOLD: %w", ErrInvalidConfig, err)
		}
		c.Breaker.FailureThreshold = uint32(n)
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort == "" {
		errs = append(errs, errors.New("http port is empty"))
	}
	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("redis backend needs an address"))
		}
	case StoreMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDB == "" {
			errs = append(errs, errors.New("mongo backend needs a uri and database"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	switch c.Orders.Backend {
	case OrdersKV:
	case OrdersPostgres:
		if c.Orders.DBHost == "" || c.Orders.DBName == "" {
			errs = append(errs, errors.New("postgres orders backend needs host and database"))
		}
		if c.Orders.DBPort <= 0 {
			errs = append(errs, fmt.Errorf("invalid db port %d", c.Orders.DBPort))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown orders backend %q", c.Orders.Backend))
	}
	if c.Orders.SweepInterval <= 0 {
		errs = append(errs, errors.New("sweep interval must be positive"))
	}
	if len(c.KafkaBrokers) > 0 && c.OutboxInterval <= 0 {
		errs = append(errs, errors.New("outbox interval must be positive when kafka is enabled"))
	}
	if c.Checkout.ProcessingDelay < 0 {
		errs = append(errs, errors.New("processing delay must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
