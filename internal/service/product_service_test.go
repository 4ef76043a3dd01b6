package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	apperrors "github.com/spec-kit/shop-service/pkg/util"
)

// products tests run without a Redis client; the cache wrapper degrades to
// straight repository reads in that configuration.
func newTestProductService() (*ProductService, *fakeProductRepo) {
	repo := newFakeProductRepo()
	return NewProductService(config.Config{}, repo, nil, nil), repo
}

func TestProductCRUD(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	product := &domain.Product{Name: "widget", Description: "a widget", Price: 9.99, Quantity: 3, SKU: "W-1"}
	require.NoError(t, svc.CreateProduct(ctx, product))
	require.NotEmpty(t, product.ID)

	got, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "widget", got.Name)

	got.Price = 12.50
	require.NoError(t, svc.UpdateProduct(ctx, got))

	updated, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.50, updated.Price)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	_, err = svc.GetProduct(ctx, product.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestProductValidation(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	err := svc.CreateProduct(ctx, &domain.Product{Name: "bad", SKU: "B-1", Price: -1})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestReserveStock(t *testing.T) {
	svc, repo := newTestProductService()
	ctx := context.Background()

	product := &domain.Product{Name: "widget", Price: 5, Quantity: 2, SKU: "W-1"}
	require.NoError(t, repo.Create(ctx, product))

	got, remaining, err := svc.ReserveStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 5.0, got.Price)

	_, _, err = svc.ReserveStock(ctx, product.ID, 1)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	_, _, err = svc.ReserveStock(ctx, product.ID, 0)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}
