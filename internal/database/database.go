package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"product-catalog/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	migrateSourcePrefix = "file://"
	sqliteScheme        = "sqlite://"
	sqlitePragmas       = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

// DB is an open catalog store together with the driver that serves it.
type DB struct {
	*sql.DB
	Driver string
}

// DriverFor resolves the database/sql driver and DSN for a DATABASE_URL.
func DriverFor(databaseURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, sqliteScheme):
		path := strings.TrimPrefix(databaseURL, sqliteScheme)
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		if strings.Contains(path, "?") {
			return DriverSQLite, path, nil
		}
		return DriverSQLite, path + "?" + sqlitePragmas, nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", databaseURL)
	}
}

// Open opens the store, applies pool limits and verifies connectivity.
func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	driver, dsn, err := DriverFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// Migrate brings the schema up to date. An already current schema is not an error.
func Migrate(cfg config.Database) error {
	m, err := migrate.New(migrateSourcePrefix+cfg.MigrationsPath, cfg.URL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	return nil
}
