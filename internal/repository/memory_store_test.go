package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultrulas16/sinekapar/internal/models"
)

// Both stores must satisfy the interfaces the services depend on.
var (
	_ CatalogRepository  = (*MemoryStore)(nil)
	_ CartRepository     = (*MemoryStore)(nil)
	_ OrderRepository    = (*MemoryStore)(nil)
	_ IdentityRepository = (*MemoryStore)(nil)
	_ AddressRepository  = (*MemoryStore)(nil)
	_ AuditRepository    = (*MemoryStore)(nil)
	_ StatsRepository    = (*MemoryStore)(nil)

	_ CatalogRepository  = (*GormStore)(nil)
	_ CartRepository     = (*GormStore)(nil)
	_ OrderRepository    = (*GormStore)(nil)
	_ IdentityRepository = (*GormStore)(nil)
	_ AddressRepository  = (*GormStore)(nil)
	_ AuditRepository    = (*GormStore)(nil)
	_ StatsRepository    = (*GormStore)(nil)
	_ CheckoutTransactor = (*GormStore)(nil)
)

func newProduct(t *testing.T, s *MemoryStore) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          "Trap",
		BasePrice:     decimal.RequireFromString("10"),
		StockQuantity: 3,
		VATRate:       20,
		IsActive:      true,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func TestMemoryStoreCartLines(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()
	a := newProduct(t, s)
	b := newProduct(t, s)

	first, err := s.UpsertCartLine(ctx, user, a.ID, 1)
	require.NoError(t, err)
	_, err = s.UpsertCartLine(ctx, user, b.ID, 4)
	require.NoError(t, err)
	merged, err := s.UpsertCartLine(ctx, user, a.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)
	assert.Equal(t, a.ID, merged.Product.ID)

	lines, err := s.ListCartLines(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, a.ID, lines[0].ProductID)
	assert.Equal(t, b.ID, lines[1].ProductID)

	assert.ErrorIs(t, s.SetCartLineQuantity(ctx, uuid.New(), first.ID, 9), ErrNotFound)
	assert.NoError(t, s.DeleteCartLine(ctx, uuid.New(), first.ID))

	lines, err = s.ListCartLines(ctx, user)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	require.NoError(t, s.ClearCart(ctx, user))
	lines, err = s.ListCartLines(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMemoryStoreOrders(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()

	order := &models.Order{UserID: user, Status: models.OrderStatusPending}
	require.NoError(t, s.CreateOrder(ctx, order))

	assert.Error(t, s.CreateOrderItems(ctx, nil))
	assert.Error(t, s.CreateOrderItems(ctx, []models.OrderItem{{OrderID: uuid.New(), Quantity: 1}}))

	require.NoError(t, s.CreateOrderItems(ctx, []models.OrderItem{{OrderID: order.ID, Quantity: 2}}))

	stored, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)

	require.NoError(t, s.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPending, "pi_1"))
	require.NoError(t, s.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid, ""))
	stored, err = s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", stored.PaymentReference)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)

	require.NoError(t, s.DeleteOrder(ctx, order.ID))
	_, err = s.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped), ErrNotFound)
}

func TestMemoryStoreListPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 5; i++ {
		newProduct(t, s)
	}

	page, total, err := s.ListActiveProducts(ctx, "", 3, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, page, 2)

	page, total, err = s.ListActiveProducts(ctx, "", 10, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, page)
}

func TestMemoryStoreDefaultAddress(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()

	first := &models.Address{UserID: user, Title: "A", IsDefault: true}
	second := &models.Address{UserID: user, Title: "B", IsDefault: true}
	require.NoError(t, s.CreateAddress(ctx, first))
	require.NoError(t, s.CreateAddress(ctx, second))

	addresses, err := s.ListAddresses(ctx, user)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, second.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
	assert.False(t, addresses[1].IsDefault)
}

func TestMemoryStoreUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := uuid.New()
	s.PutProfile(models.Profile{ID: id, Role: models.RoleEndUser, FullName: "Ayse"})

	require.NoError(t, s.UpdateProfile(ctx, &models.Profile{ID: id, Role: models.RoleDealer, FullName: "Ayse K", Phone: "555"}))
	stored, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDealer, stored.Role)
	assert.Equal(t, "Ayse K", stored.FullName)
	assert.Equal(t, "555", stored.Phone)

	assert.ErrorIs(t, s.UpdateProfile(ctx, &models.Profile{ID: uuid.New()}), ErrNotFound)
}

func TestMemoryStoreDashboardStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	newProduct(t, s)
	low := newProduct(t, s)
	low.StockQuantity = 1
	require.NoError(t, s.UpdateProduct(ctx, low))
	hidden := newProduct(t, s)
	hidden.IsActive = false
	hidden.StockQuantity = 0
	require.NoError(t, s.UpdateProduct(ctx, hidden))

	s.PutDealer(models.Dealer{UserID: uuid.New(), Status: models.DealerStatusPending})
	s.PutDealer(models.Dealer{UserID: uuid.New(), Status: models.DealerStatusActive})
	s.PutProfile(models.Profile{ID: uuid.New()})

	order := func(createdAt time.Time, status models.OrderStatus, payment models.PaymentStatus, total string) {
		o := &models.Order{
			BaseModel:     models.BaseModel{CreatedAt: createdAt},
			UserID:        uuid.New(),
			Status:        status,
			PaymentStatus: payment,
			TotalAmount:   decimal.RequireFromString(total),
		}
		require.NoError(t, s.CreateOrder(ctx, o))
	}
	order(now, models.OrderStatusProcessing, models.PaymentStatusPaid, "100.00")
	order(now, models.OrderStatusPending, models.PaymentStatusPending, "999.00")
	order(lastMonthStart.AddDate(0, 0, 3), models.OrderStatusDelivered, models.PaymentStatusPaid, "50.00")
	order(lastMonthStart.AddDate(0, -2, 0), models.OrderStatusDelivered, models.PaymentStatusPaid, "25.00")

	stats, err := s.DashboardStats(ctx, monthStart, lastMonthStart, 2)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalProducts)
	assert.EqualValues(t, 2, stats.ActiveProducts)
	assert.EqualValues(t, 1, stats.LowStockProducts)
	assert.EqualValues(t, 2, stats.TotalDealers)
	assert.EqualValues(t, 1, stats.PendingDealers)
	assert.EqualValues(t, 1, stats.TotalProfiles)
	assert.EqualValues(t, 4, stats.TotalOrders)
	assert.EqualValues(t, 2, stats.OrdersByStatus[models.OrderStatusDelivered])
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("175")))
	assert.True(t, stats.MonthlyRevenue.Equal(decimal.RequireFromString("100")))
	assert.True(t, stats.LastMonthRevenue.Equal(decimal.RequireFromString("50")))
}
