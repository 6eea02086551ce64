// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ultrulas16/sinekapar/internal/models"
)

// ErrNotFound is returned by every repository when a keyed lookup misses.
var ErrNotFound = errors.New("record not found")

// CatalogRepository reads and maintains products.
type CatalogRepository interface {
	// ListActiveProducts returns active products, newest first, with images.
	ListActiveProducts(ctx context.Context, category string, offset, limit int) ([]models.Product, int64, error)

	// GetProduct returns one product with images regardless of is_active.
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// GetProductsByIDs returns the products found for ids, in no particular order.
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)

	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	AddProductImage(ctx context.Context, img *models.ProductImage) error
}

// CartRepository stores cart lines keyed by (user_id, product_id).
type CartRepository interface {
	// ListCartLines returns the buyer's lines in creation order, products preloaded.
	ListCartLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)

	// GetCartLine returns the line only if it belongs to userID.
	GetCartLine(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error)

	// UpsertCartLine inserts a line with quantity delta or adds delta to the
	// existing line for the same (user_id, product_id).
	UpsertCartLine(ctx context.Context, userID, productID uuid.UUID, delta int) (*models.CartLine, error)

	SetCartLineQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) error

	// DeleteCartLine is a no-op when the line does not exist.
	DeleteCartLine(ctx context.Context, userID, lineID uuid.UUID) error

	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// OrderRepository persists orders and their item snapshots.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reference string) error
}

// IdentityRepository resolves already-authenticated users to their profile
// and dealer record.
type IdentityRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	GetDealerByUserID(ctx context.Context, userID uuid.UUID) (*models.Dealer, error)
	GetDealer(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	UpdateDealerTier(ctx context.Context, id uuid.UUID, tier int) error
}

type AddressRepository interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	CreateAddress(ctx context.Context, a *models.Address) error
}

// AuditRepository records mutating API calls.
type AuditRepository interface {
	RecordAudit(ctx context.Context, entry *models.AuditLog) error
}

// StatsRepository aggregates the admin dashboard counters. Revenue windows
// are [monthStart, now) and [lastMonthStart, monthStart); products with
// stock at or below lowStock count as low stock.
type StatsRepository interface {
	DashboardStats(ctx context.Context, monthStart, lastMonthStart time.Time, lowStock int) (*models.DashboardStats, error)
}

// CheckoutTransactor is implemented by stores that can run the order write
// sequence atomically. Stores without it get compensating cleanup instead.
type CheckoutTransactor interface {
	WithinTransaction(ctx context.Context, fn func(orders OrderRepository, carts CartRepository) error) error
}
