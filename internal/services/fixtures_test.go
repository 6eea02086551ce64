package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

var errStoreDown = errors.New("connection reset by peer")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func endUser() BuyerContext {
	return BuyerContext{UserID: uuid.New(), Role: models.RoleEndUser}
}

func dealerAt(tier int) BuyerContext {
	return BuyerContext{UserID: uuid.New(), Role: models.RoleDealer, DealerTier: tier}
}

func admin() BuyerContext {
	return BuyerContext{UserID: uuid.New(), Role: models.RoleAdmin}
}

func seedProduct(t *testing.T, store *repository.MemoryStore, mutate func(p *models.Product)) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:             "UV Trap",
		SKU:              "UV-" + uuid.NewString()[:6],
		BasePrice:        dec("100.00"),
		DealerTier1Price: nullDec("70.00"),
		DealerTier2Price: nullDec("80.00"),
		DealerTier3Price: nullDec("90.00"),
		StockQuantity:    10,
		VATRate:          20,
		VATIncluded:      false,
		IsActive:         true,
		ShippingOption:   models.ShippingStandard,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return p
}

func seedAddress(t *testing.T, store *repository.MemoryStore, userID uuid.UUID) *models.Address {
	t.Helper()

	a := &models.Address{
		UserID:      userID,
		Title:       "Office",
		FullName:    "Deniz Kaya",
		Phone:       "+90 555 000 00 00",
		City:        "Izmir",
		FullAddress: "Alsancak Mah. 1453 Sok. No:5",
		IsDefault:   true,
	}
	require.NoError(t, store.CreateAddress(context.Background(), a))
	return a
}

func testFees() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"standard": dec("15.00"),
		"express":  dec("45.00"),
		"pickup":   decimal.Zero,
		"free":     decimal.Zero,
	}
}

// flakyOrders wraps a MemoryStore and fails selected order writes. It does
// not expose WithinTransaction, so checkout uses the compensating path.
type flakyOrders struct {
	*repository.MemoryStore
	failCreateItems bool
	failClearCart   bool
	failDelete      bool
	deleted         []uuid.UUID
}

func (f *flakyOrders) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if f.failCreateItems {
		return errStoreDown
	}
	return f.MemoryStore.CreateOrderItems(ctx, items)
}

func (f *flakyOrders) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if f.failClearCart {
		return errStoreDown
	}
	return f.MemoryStore.ClearCart(ctx, userID)
}

func (f *flakyOrders) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	if f.failDelete {
		return errStoreDown
	}
	return f.MemoryStore.DeleteOrder(ctx, id)
}

// txStore adds a WithinTransaction that runs fn against the memory store
// and records that it was used.
type txStore struct {
	*repository.MemoryStore
	calls int
}

func (s *txStore) WithinTransaction(ctx context.Context, fn func(orders repository.OrderRepository, carts repository.CartRepository) error) error {
	s.calls++
	return fn(s.MemoryStore, s.MemoryStore)
}

// failingCarts fails every cart read.
type failingCarts struct {
	*repository.MemoryStore
}

func (f failingCarts) ListCartLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	return nil, errStoreDown
}

// recordingNotifier captures order events instead of sending email.
type recordingNotifier struct {
	placed  []models.Order
	changed []models.Order
}

func (r *recordingNotifier) OrderPlaced(order *models.Order) {
	r.placed = append(r.placed, *order)
}

func (r *recordingNotifier) OrderStatusChanged(order *models.Order) {
	r.changed = append(r.changed, *order)
}
