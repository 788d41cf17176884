package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhub/orders-api/internal/domain"
)

func TestEnsureTiers_Idempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	require.NoError(t, env.catalog.EnsureTiers(ctx))
	tiers, err := env.catalog.ListTiers(ctx)

	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, domain.TierStandard, tiers[0].Name)
	assert.Equal(t, domain.TierPremium, tiers[1].Name)
}

func TestCreateProduct(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("non-positive price", func(t *testing.T) {
		_, err := env.catalog.CreateProduct(ctx, domain.Product{Name: "Free", SKU: "FREE-1", CategoryID: env.product.CategoryID})

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := env.catalog.CreateProduct(ctx, domain.Product{Name: "Tea", SKU: "TEA-1", Price: decimal.NewFromInt(4), CategoryID: 999})

		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		_, err := env.catalog.CreateProduct(ctx, domain.Product{Name: "Copy", SKU: env.product.SKU, Price: decimal.NewFromInt(4), CategoryID: env.product.CategoryID})

		assert.ErrorIs(t, err, ErrProductSKUExists)
	})

	t.Run("listed", func(t *testing.T) {
		products, err := env.catalog.ListProducts(ctx)

		require.NoError(t, err)
		require.Len(t, products, 1)
		require.NotNil(t, products[0].Category)
		assert.Equal(t, "Living", products[0].Category.Name)
	})
}

func TestEnsureCategory(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	existing, err := env.catalog.EnsureCategory(ctx, "Living")
	require.NoError(t, err)
	assert.Equal(t, env.product.CategoryID, existing.ID)

	created, err := env.catalog.EnsureCategory(ctx, "Tea")
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, created.ID)

	categories, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestCreatePointOfSales_DuplicateName(t *testing.T) {
	env := setupEnv(t)

	_, err := env.catalog.CreatePointOfSales(context.Background(), domain.PointOfSales{Name: env.pos.Name})

	assert.ErrorIs(t, err, ErrPointOfSalesNameExists)
}
