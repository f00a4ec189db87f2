package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"product-catalog/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

type Repository interface {
	Insert(ctx context.Context, p products.Product) (products.Product, error)
	FindByID(ctx context.Context, id int64) (products.Product, error)
	List(ctx context.Context) ([]products.Product, error)
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

type Metrics struct {
	Created   prometheus.Counter
	Duplicate prometheus.Counter
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	metrics   Metrics
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, metrics Metrics) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]products.Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}
	return items, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (products.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo find %d: %w", id, err)
	}
	return product, nil
}

// CreateProduct persists p under its caller-chosen id. The existence check and
// the write are a single conditional insert, so concurrent creates for one id
// yield exactly one success and products.ErrDuplicateID for the rest.
func (s *Service) CreateProduct(ctx context.Context, p products.Product) (products.Product, error) {
	if strings.TrimSpace(p.Name) == "" || utf8.RuneCountInString(p.Name) > products.MaxNameLength {
		return products.Product{}, products.ErrInvalidName
	}

	product, err := s.repo.Insert(ctx, p)
	if err != nil {
		if errors.Is(err, products.ErrDuplicateID) {
			s.metrics.Duplicate.Inc()
		}
		return products.Product{}, fmt.Errorf("repo insert: %w", err)
	}

	if err := s.publisher.Publish(ctx, products.ProductEvent{
		EventType: products.EventCreated,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("publish product_created event failed",
			"product_id", product.ID,
			"error", err,
		)
	}

	s.metrics.Created.Inc()
	return product, nil
}
