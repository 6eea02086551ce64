// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotAuthenticated        = errors.New("buyer is not authenticated")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrRemoteFailure           = errors.New("backing store request failed")
	ErrOrphanedOrder           = errors.New("order left without items")
	ErrProductNotFound         = errors.New("product not found")
	ErrCartLineNotFound        = errors.New("cart line not found")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrAddressRequired         = errors.New("shipping address is required")
	ErrAddressNotFound         = errors.New("address not found")
	ErrInvalidShippingOption   = errors.New("unknown shipping option")
	ErrInvalidPaymentMethod    = errors.New("unknown payment method")
	ErrInvalidCheckoutState    = errors.New("operation not allowed in current checkout state")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrForbidden               = errors.New("forbidden")
	ErrDealerNotFound          = errors.New("dealer not found")
	ErrInvalidTier             = errors.New("dealer tier must be 1, 2 or 3")
	ErrPaymentNotApplicable    = errors.New("order is not payable by card")
	ErrInvalidImage            = errors.New("invalid image file")
	ErrInvalidPrice            = errors.New("prices must not be negative")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrInvalidRole             = errors.New("unknown user role")
)

// StockShortage describes one cart line that asks for more than is on hand.
type StockShortage struct {
	LineID      uuid.UUID `json:"line_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// InsufficientStockError lists every offending line. It matches
// ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Lines []StockShortage
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		names = append(names, fmt.Sprintf("%s (requested %d, available %d)", l.ProductName, l.Requested, l.Available))
	}
	return fmt.Sprintf("insufficient stock: %s", strings.Join(names, ", "))
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func remoteFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRemoteFailure, op, err)
}
