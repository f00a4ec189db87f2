package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"product-catalog/internal/database"
	"product-catalog/internal/products"
)

const healthCheckTimeout = 2 * time.Second

// SQLRepository stores products in the products table of a postgres or sqlite database.
// Every operation runs on a connection acquired for that call and released before it returns.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *SQLRepository {
	return &SQLRepository{db: db, driver: driver}
}

// Insert writes p unless a product with the same id exists, in which case it
// returns products.ErrDuplicateID and leaves the table untouched.
func (r *SQLRepository) Insert(ctx context.Context, p products.Product) (products.Product, error) {
	query := r.rebind(`
		INSERT INTO products (id, name, price, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
		RETURNING id, name, price, description
	`)

	var created products.Product
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx, query, p.ID, p.Name, p.Price, nullString(p.Description))
		var scanErr error
		created, scanErr = scanProduct(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrDuplicateID
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("insert product %d: %w", p.ID, err)
	}
	return created, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (products.Product, error) {
	query := r.rebind(`SELECT id, name, price, description FROM products WHERE id = $1`)

	var p products.Product
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var scanErr error
		p, scanErr = scanProduct(conn.QueryRowContext(ctx, query, id))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("select product %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]products.Product, error) {
	query := `
		SELECT id, name, price, description
		FROM products
		ORDER BY id
	`

	list := make([]products.Product, 0)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query products: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return fmt.Errorf("scan product: %w", err)
			}
			list = append(list, p)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *SQLRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

// withConn runs fn on a dedicated pool connection and always returns it to the pool.
func (r *SQLRepository) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// rebind turns $N placeholders into ?N for sqlite.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != database.DriverSQLite {
		return query
	}
	return strings.ReplaceAll(query, "$", "?")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (products.Product, error) {
	var (
		p    products.Product
		desc sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Price, &desc); err != nil {
		return products.Product{}, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	return p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
