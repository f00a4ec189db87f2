package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultDatabaseURL     = "sqlite://products.db"
	defaultHTTPAddr        = ":8080"
	defaultMigrationsPath  = "migrations/products"
	defaultEventsQueue     = "catalog.events"
	defaultShutdownTimeout = 10 * time.Second

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

// Database holds the store settings shared by every process that opens the catalog.
type Database struct {
	URL             string
	MigrationsPath  string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

type Catalog struct {
	Database          Database
	RabbitMQURL       string
	EventsQueue       string
	HTTPAddr          string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadCatalog() (Catalog, error) {
	db, err := loadDatabase()
	if err != nil {
		return Catalog{}, err
	}

	return Catalog{
		Database:          db,
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		EventsQueue:       getEnv("EVENTS_QUEUE", defaultEventsQueue),
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}, nil
}

func loadDatabase() (Database, error) {
	cfg := Database{
		URL:             getEnv("DATABASE_URL", defaultDatabaseURL),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		MaxOpenConns:    defaultDBMaxOpenConns,
		MaxIdleConns:    defaultDBMaxIdleConns,
		ConnMaxLifetime: defaultDBConnMaxLifetime,
		PingTimeout:     defaultDBPingTimeout,
	}

	if !hasSupportedScheme(cfg.URL) {
		return Database{}, fmt.Errorf("DATABASE_URL must start with postgres:// or sqlite://")
	}

	return cfg, nil
}

func hasSupportedScheme(url string) bool {
	for _, prefix := range []string{"postgres://", "postgresql://", "sqlite://"} {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
