package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/ultrulas16/sinekapar/internal/repository"
)

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Warn, gormLogLevel("anything else"))
}

func TestStarterProducts(t *testing.T) {
	skus := map[string]bool{}
	for _, p := range StarterProducts() {
		assert.False(t, skus[p.SKU], "duplicate sku %s", p.SKU)
		skus[p.SKU] = true

		assert.True(t, p.IsActive)
		assert.True(t, p.ShippingOption.Valid())
		assert.False(t, p.BasePrice.IsNegative())
		for tier := 1; tier <= 3; tier++ {
			price, ok := p.TierPrice(tier)
			assert.True(t, ok)
			assert.True(t, price.IsPositive())
		}
	}
}

func TestSeedMemory(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	require.NoError(t, SeedMemory(ctx, store))

	products, total, err := store.ListActiveProducts(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, len(StarterProducts()), total)
	assert.Len(t, products, len(StarterProducts()))
}
