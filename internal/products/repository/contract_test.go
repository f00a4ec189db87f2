package repository

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/products"
)

func strPtr(s string) *string { return &s }

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations", "products")
}

func openTestStore(t *testing.T, databaseURL string) *SQLRepository {
	t.Helper()

	cfg := config.Database{
		URL:             databaseURL,
		MigrationsPath:  migrationsDir(t),
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		PingTimeout:     5 * time.Second,
	}
	if err := database.Migrate(cfg); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	db, err := database.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return New(db.DB, db.Driver)
}

// runRepositoryContract exercises behaviour every backing database must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) *SQLRepository) {
	t.Run("insert returns persisted row", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		in := products.Product{ID: 1, Name: "Widget", Price: 9.99}
		got, err := repo.Insert(ctx, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != 1 || got.Name != "Widget" || got.Price != 9.99 || got.Description != nil {
			t.Fatalf("unexpected product: %+v", got)
		}
	})

	t.Run("description round-trips", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Insert(ctx, products.Product{ID: 7, Name: "Gadget", Price: -1.5, Description: strPtr("spare part")}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := repo.FindByID(ctx, 7)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.Description == nil || *got.Description != "spare part" {
			t.Fatalf("want description %q, got %v", "spare part", got.Description)
		}
		if got.Price != -1.5 {
			t.Fatalf("want price -1.5, got %v", got.Price)
		}
	})

	t.Run("duplicate id is rejected and row kept", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Insert(ctx, products.Product{ID: 3, Name: "Original", Price: 1}); err != nil {
			t.Fatalf("seed: %v", err)
		}

		_, err := repo.Insert(ctx, products.Product{ID: 3, Name: "Impostor", Price: 2})
		if !errors.Is(err, products.ErrDuplicateID) {
			t.Fatalf("want ErrDuplicateID, got %v", err)
		}

		got, _ := repo.FindByID(ctx, 3)
		if got.Name != "Original" || got.Price != 1 {
			t.Fatalf("existing row changed: %+v", got)
		}
		count, _ := repo.Count(ctx)
		if count != 1 {
			t.Fatalf("want 1 row, got %d", count)
		}
	})

	t.Run("concurrent inserts with one id admit a single winner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 8
		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			created    int
			duplicates int
			others     []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Insert(ctx, products.Product{ID: 42, Name: "Race", Price: 1})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, products.ErrDuplicateID):
					duplicates++
				default:
					others = append(others, err)
				}
			}()
		}
		wg.Wait()

		if len(others) > 0 {
			t.Fatalf("unexpected errors: %v", others)
		}
		if created != 1 || duplicates != workers-1 {
			t.Fatalf("want 1 created and %d duplicates, got %d and %d", workers-1, created, duplicates)
		}
	})

	t.Run("find missing id returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindByID(context.Background(), 999)
		if !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []int64{5, 2, 9, 1} {
			if _, err := repo.Insert(ctx, products.Product{ID: id, Name: "P", Price: float64(id)}); err != nil {
				t.Fatalf("seed %d: %v", id, err)
			}
		}

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 4 {
			t.Fatalf("want 4 items, got %d", len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i].ID <= list[i-1].ID {
				t.Fatalf("expected ascending order, got id %d after %d", list[i].ID, list[i-1].ID)
			}
		}
	})

	t.Run("empty table lists a non-nil empty slice", func(t *testing.T) {
		repo := newRepo(t)

		list, err := repo.List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if list == nil {
			t.Fatal("expected non-nil empty slice")
		}
		if len(list) != 0 {
			t.Fatalf("want 0 items, got %d", len(list))
		}
	})

	t.Run("health", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Health(); err != nil {
			t.Fatalf("health check failed: %v", err)
		}
	})
}
