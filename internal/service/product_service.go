package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/persistence"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util"
)

const productCachePrefix = "product:"

// ProductService manages the catalog with a Redis read-through cache on
// single-product reads. Cache failures degrade to the database silently.
type ProductService struct {
	products repository.ProductRepository
	cache    *persistence.Redis
	cacheTTL config.CacheConfig
	logger   *zap.Logger
}

// NewProductService builds the service.
func NewProductService(cfg config.Config, products repository.ProductRepository, cache *persistence.Redis, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products: products,
		cache:    cache,
		cacheTTL: cfg.Cache,
		logger:   logger,
	}
}

// CreateProduct adds a catalog entry.
func (s *ProductService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.Price < 0 || product.Quantity < 0 {
		return apperrors.NewValidationError("price and quantity must be non-negative", nil)
	}
	return s.products.Create(ctx, product)
}

// GetProduct fetches a product, preferring the cache.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if cached, err := s.cache.Get(ctx, productCachePrefix+id); err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return &product, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("product cache read failed", zap.Error(err))
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}

	s.cacheProduct(ctx, product)
	return product, nil
}

// ListProducts returns a catalog page.
func (s *ProductService) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	return s.products.List(ctx, limit, offset)
}

// UpdateProduct replaces a catalog entry and invalidates its cache entry.
func (s *ProductService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if product.Price < 0 || product.Quantity < 0 {
		return apperrors.NewValidationError("price and quantity must be non-negative", nil)
	}
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", map[string]any{"id": product.ID})
		}
		return err
	}
	s.invalidate(ctx, product.ID)
	return nil
}

// DeleteProduct removes a catalog entry and invalidates its cache entry.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ReserveStock captures the current product record and decrements available
// stock for an order line. The decrement is conditional in the store, so two
// concurrent orders cannot oversell. Returns the remaining quantity.
func (s *ProductService) ReserveStock(ctx context.Context, id string, quantity int) (*domain.Product, int, error) {
	if quantity <= 0 {
		return nil, 0, apperrors.NewValidationError("quantity must be positive", nil)
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, 0, err
	}

	remaining, err := s.products.ReduceStock(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperrors.NewConflict("insufficient stock", map[string]any{"product_id": id})
		}
		return nil, 0, err
	}

	s.invalidate(ctx, id)
	return product, remaining, nil
}

func (s *ProductService) cacheProduct(ctx context.Context, product *domain.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, productCachePrefix+product.ID, string(data), s.cacheTTL.ProductTTL()); err != nil {
		s.logger.Warn("product cache write failed", zap.Error(err))
	}
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, productCachePrefix+id); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Error(err))
	}
}
