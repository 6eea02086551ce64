package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

type failingStats struct {
	*repository.MemoryStore
}

func (failingStats) DashboardStats(context.Context, time.Time, time.Time, int) (*models.DashboardStats, error) {
	return nil, errStoreDown
}

func paidOrderAt(t *testing.T, store *repository.MemoryStore, at time.Time, total string) {
	t.Helper()
	require.NoError(t, store.CreateOrder(context.Background(), &models.Order{
		BaseModel:     models.BaseModel{CreatedAt: at},
		UserID:        uuid.New(),
		Status:        models.OrderStatusDelivered,
		PaymentStatus: models.PaymentStatusPaid,
		TotalAmount:   dec(total),
	}))
}

func TestGetDashboardStats(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	service := NewAdminService(store, store)
	service.now = func() time.Time { return time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC) }

	seedProduct(t, store, nil)
	seedProduct(t, store, func(p *models.Product) { p.StockQuantity = LowStockThreshold })
	paidOrderAt(t, store, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), "150.00")
	paidOrderAt(t, store, time.Date(2026, 4, 30, 23, 0, 0, 0, time.UTC), "100.00")

	stats, err := service.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.ActiveProducts)
	assert.EqualValues(t, 1, stats.LowStockProducts)
	assert.True(t, stats.MonthlyRevenue.Equal(dec("150")))
	assert.True(t, stats.LastMonthRevenue.Equal(dec("100")))
	assert.Equal(t, 50.0, stats.RevenueGrowth)
}

func TestGetDashboardStatsWithoutLastMonth(t *testing.T) {
	store := repository.NewMemoryStore()
	service := NewAdminService(store, store)
	paidOrderAt(t, store, time.Now(), "80.00")

	stats, err := service.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.RevenueGrowth)
}

func TestGetDashboardStatsRemoteFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	service := NewAdminService(failingStats{store}, store)

	_, err := service.GetDashboardStats(context.Background())
	assert.ErrorIs(t, err, ErrRemoteFailure)
}

func TestUpdateProfileRole(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	service := NewAdminService(store, store)

	id := uuid.New()
	store.PutProfile(models.Profile{ID: id, Role: models.RoleEndUser, FullName: "Ece"})

	profile, err := service.UpdateProfileRole(ctx, id, models.RoleDealer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDealer, profile.Role)
	assert.Equal(t, "Ece", profile.FullName)

	// The new role is what the next request resolves to.
	buyer, err := NewIdentityService(store).ResolveBuyer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDealer, buyer.Role)

	_, err = service.UpdateProfileRole(ctx, id, models.UserRole("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.UpdateProfileRole(ctx, uuid.New(), models.RoleAdmin)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
