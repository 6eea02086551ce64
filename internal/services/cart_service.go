// internal/services/cart_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

type CartService struct {
	carts   repository.CartRepository
	catalog repository.CatalogRepository
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// LineView is a cart line priced for one buyer.
type LineView struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	Price        ResolvedPrice   `json:"price"`
	DisplayPrice decimal.Decimal `json:"display_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Stock        int             `json:"stock_quantity"`
	StockWarning bool            `json:"stock_warning"`
}

type CartSummary struct {
	Lines      []LineView      `json:"lines"`
	ItemCount  int             `json:"item_count"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

func (s *CartSummary) Empty() bool {
	return len(s.Lines) == 0
}

func NewCartService(carts repository.CartRepository, catalog repository.CatalogRepository) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

// AddOrIncrement adds delta units of a product, merging into the existing
// line for the same product.
func (s *CartService) AddOrIncrement(ctx context.Context, buyer BuyerContext, productID uuid.UUID, delta int) (*LineView, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if delta < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, remoteFailure("load product", err)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	line, err := s.carts.UpsertCartLine(ctx, buyer.UserID, productID, delta)
	if err != nil {
		return nil, remoteFailure("upsert cart line", err)
	}

	view := priceLine(line, buyer)
	return &view, nil
}

// SetQuantity overwrites a line's quantity. Quantities above stock are kept
// and flagged with StockWarning; Submit refuses them later.
func (s *CartService) SetQuantity(ctx context.Context, buyer BuyerContext, lineID uuid.UUID, quantity int) (*LineView, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if err := s.carts.SetCartLineQuantity(ctx, buyer.UserID, lineID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, remoteFailure("set cart line quantity", err)
	}

	line, err := s.carts.GetCartLine(ctx, buyer.UserID, lineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, remoteFailure("reload cart line", err)
	}

	view := priceLine(line, buyer)
	return &view, nil
}

// RemoveLine deletes a line; removing a missing line is not an error.
func (s *CartService) RemoveLine(ctx context.Context, buyer BuyerContext, lineID uuid.UUID) error {
	if !buyer.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := s.carts.DeleteCartLine(ctx, buyer.UserID, lineID); err != nil {
		return remoteFailure("delete cart line", err)
	}
	return nil
}

// ComputeTotals prices the cart from current catalog data. Nothing is cached
// between calls.
func (s *CartService) ComputeTotals(ctx context.Context, buyer BuyerContext) (*CartSummary, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	lines, err := s.carts.ListCartLines(ctx, buyer.UserID)
	if err != nil {
		return nil, remoteFailure("list cart lines", err)
	}

	return summarize(lines, buyer), nil
}

func summarize(lines []models.CartLine, buyer BuyerContext) *CartSummary {
	summary := &CartSummary{
		Lines:      make([]LineView, 0, len(lines)),
		GrandTotal: decimal.Zero,
	}
	for i := range lines {
		view := priceLine(&lines[i], buyer)
		summary.Lines = append(summary.Lines, view)
		summary.ItemCount += view.Quantity
		summary.GrandTotal = summary.GrandTotal.Add(view.LineTotal)
	}
	return summary
}

func priceLine(line *models.CartLine, buyer BuyerContext) LineView {
	price := ResolveUnitPrice(&line.Product, buyer)
	display := price.Gross()

	return LineView{
		ID:           line.ID,
		ProductID:    line.ProductID,
		ProductName:  line.Product.Name,
		Quantity:     line.Quantity,
		Price:        price,
		DisplayPrice: display,
		LineTotal:    display.Mul(decimal.NewFromInt(int64(line.Quantity))),
		Stock:        line.Product.StockQuantity,
		StockWarning: line.Quantity > line.Product.StockQuantity,
	}
}
