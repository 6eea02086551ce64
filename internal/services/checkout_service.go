// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

type CheckoutState string

const (
	CheckoutLoading    CheckoutState = "loading"
	CheckoutReady      CheckoutState = "ready"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutCompleted  CheckoutState = "completed"
	CheckoutFailed     CheckoutState = "failed"
)

type CheckoutService struct {
	carts     repository.CartRepository
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	fees      map[models.ShippingOption]decimal.Decimal
	notifier  OrderNotifier
}

// CheckoutRequest carries the buyer's selections for quote and submit.
type CheckoutRequest struct {
	AddressID      *uuid.UUID            `json:"address_id,omitempty"`
	ShippingOption models.ShippingOption `json:"shipping_option,omitempty" validate:"omitempty,shipping_option"`
	PaymentMethod  models.PaymentMethod  `json:"payment_method,omitempty" validate:"omitempty,payment_method"`
}

type OrderTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	Total       decimal.Decimal `json:"total"`
}

// CheckoutSession is one buyer's checkout attempt. It is not safe for
// concurrent use and is not persisted.
type CheckoutSession struct {
	State          CheckoutState         `json:"state"`
	Buyer          BuyerContext          `json:"buyer"`
	Cart           *CartSummary          `json:"cart"`
	Addresses      []models.Address      `json:"addresses"`
	AddressID      *uuid.UUID            `json:"address_id,omitempty"`
	ShippingOption models.ShippingOption `json:"shipping_option"`
	PaymentMethod  models.PaymentMethod  `json:"payment_method"`
	OrderID        *uuid.UUID            `json:"order_id,omitempty"`
	FailureReason  string                `json:"failure_reason,omitempty"`

	svc *CheckoutService
}

// NewCheckoutService takes the fee table keyed by shipping option name, as
// returned by config.ShippingConfig.Fees.
func NewCheckoutService(carts repository.CartRepository, orders repository.OrderRepository, addresses repository.AddressRepository, fees map[string]decimal.Decimal) *CheckoutService {
	table := make(map[models.ShippingOption]decimal.Decimal, len(fees))
	for option, fee := range fees {
		table[models.ShippingOption(option)] = fee
	}
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		addresses: addresses,
		fees:      table,
	}
}

// SetNotifier makes successful submits email an order confirmation.
func (s *CheckoutService) SetNotifier(n OrderNotifier) {
	s.notifier = n
}

// Begin loads the cart and addresses and moves the session to Ready. An
// empty cart returns ErrEmptyCart and no session.
func (s *CheckoutService) Begin(ctx context.Context, buyer BuyerContext) (*CheckoutSession, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	session := &CheckoutSession{
		State:          CheckoutLoading,
		Buyer:          buyer,
		ShippingOption: models.ShippingStandard,
		PaymentMethod:  models.PaymentCard,
		svc:            s,
	}

	lines, err := s.carts.ListCartLines(ctx, buyer.UserID)
	if err != nil {
		return nil, remoteFailure("list cart lines", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	session.Cart = summarize(lines, buyer)

	addresses, err := s.addresses.ListAddresses(ctx, buyer.UserID)
	if err != nil {
		return nil, remoteFailure("list addresses", err)
	}
	session.Addresses = addresses
	if preselected := defaultAddress(addresses); preselected != nil {
		id := preselected.ID
		session.AddressID = &id
	}

	session.State = CheckoutReady
	return session, nil
}

// Apply runs the selections present in req, in address, shipping, payment order.
func (cs *CheckoutSession) Apply(req *CheckoutRequest) error {
	if req == nil {
		return nil
	}
	if req.AddressID != nil {
		if err := cs.SelectAddress(*req.AddressID); err != nil {
			return err
		}
	}
	if req.ShippingOption != "" {
		if err := cs.SelectShippingOption(req.ShippingOption); err != nil {
			return err
		}
	}
	if req.PaymentMethod != "" {
		if err := cs.SelectPaymentMethod(req.PaymentMethod); err != nil {
			return err
		}
	}
	return nil
}

func (cs *CheckoutSession) SelectAddress(addressID uuid.UUID) error {
	if cs.State != CheckoutReady {
		return ErrInvalidCheckoutState
	}
	for _, a := range cs.Addresses {
		if a.ID == addressID {
			id := a.ID
			cs.AddressID = &id
			return nil
		}
	}
	return ErrAddressNotFound
}

func (cs *CheckoutSession) SelectShippingOption(option models.ShippingOption) error {
	if cs.State != CheckoutReady {
		return ErrInvalidCheckoutState
	}
	if _, ok := cs.svc.fees[option]; !ok || !option.Valid() {
		return ErrInvalidShippingOption
	}
	cs.ShippingOption = option
	return nil
}

func (cs *CheckoutSession) SelectPaymentMethod(method models.PaymentMethod) error {
	if cs.State != CheckoutReady {
		return ErrInvalidCheckoutState
	}
	if !method.Valid() {
		return ErrInvalidPaymentMethod
	}
	cs.PaymentMethod = method
	return nil
}

// ComputeOrderTotals prices the session's cart with the selected shipping
// option. Each line is rounded to cents before summing, so the subtotal
// always equals the sum of the order item line totals.
func (cs *CheckoutSession) ComputeOrderTotals() OrderTotals {
	return cs.svc.totals(cs.Cart, cs.ShippingOption)
}

func (s *CheckoutService) totals(cart *CartSummary, option models.ShippingOption) OrderTotals {
	subtotal, vat := decimal.Zero, decimal.Zero
	for _, l := range cart.Lines {
		line := l.LineTotal.Round(2)
		subtotal = subtotal.Add(line)
		vat = vat.Add(VATPortion(line, l.Price.VATRate))
	}

	fee := s.fees[option].Round(2)

	return OrderTotals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		VATAmount:   vat.Round(2),
		Total:       subtotal.Add(fee),
	}
}

// Submit turns the cart into an order. The cart and stock are re-read first;
// any shortage fails the session before anything is written.
func (cs *CheckoutSession) Submit(ctx context.Context) (*models.Order, error) {
	if cs.State != CheckoutReady {
		return nil, ErrInvalidCheckoutState
	}
	if cs.AddressID == nil {
		return nil, ErrAddressRequired
	}

	cs.State = CheckoutSubmitting
	order, err := cs.svc.submit(ctx, cs)
	if err != nil {
		cs.State = CheckoutFailed
		cs.FailureReason = err.Error()
		return nil, err
	}

	cs.State = CheckoutCompleted
	cs.OrderID = &order.ID
	return order, nil
}

func (s *CheckoutService) submit(ctx context.Context, cs *CheckoutSession) (*models.Order, error) {
	userID := cs.Buyer.UserID

	lines, err := s.carts.ListCartLines(ctx, userID)
	if err != nil {
		return nil, remoteFailure("reload cart", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var shortages []StockShortage
	for _, l := range lines {
		if l.Quantity > l.Product.StockQuantity {
			shortages = append(shortages, StockShortage{
				LineID:      l.ID,
				ProductID:   l.ProductID,
				ProductName: l.Product.Name,
				Requested:   l.Quantity,
				Available:   l.Product.StockQuantity,
			})
		}
	}
	if len(shortages) > 0 {
		return nil, &InsufficientStockError{Lines: shortages}
	}

	cs.Cart = summarize(lines, cs.Buyer)
	totals := s.totals(cs.Cart, cs.ShippingOption)

	order := &models.Order{
		UserID:            userID,
		ShippingAddressID: *cs.AddressID,
		BillingAddressID:  *cs.AddressID,
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		PaymentMethod:     cs.PaymentMethod,
		ShippingOption:    cs.ShippingOption,
		Subtotal:          totals.Subtotal,
		VATAmount:         totals.VATAmount,
		ShippingFee:       totals.ShippingFee,
		TotalAmount:       totals.Total,
		ContactEmail:      cs.Buyer.Email,
	}

	var items []models.OrderItem
	if tx, ok := s.orders.(repository.CheckoutTransactor); ok {
		err = tx.WithinTransaction(ctx, func(orders repository.OrderRepository, carts repository.CartRepository) error {
			if err := orders.CreateOrder(ctx, order); err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			items = snapshotItems(order.ID, cs.Cart)
			if err := orders.CreateOrderItems(ctx, items); err != nil {
				return fmt.Errorf("create order items: %w", err)
			}
			if err := carts.ClearCart(ctx, userID); err != nil {
				return fmt.Errorf("clear cart: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, remoteFailure("place order", err)
		}
	} else if items, err = s.placeWithCompensation(ctx, order, cs.Cart); err != nil {
		return nil, err
	}

	// items carry the IDs the store assigned on insert
	order.Items = items

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount.StringFixed(2),
		"items":    len(order.Items),
	}).Info("Order placed")

	if s.notifier != nil {
		s.notifier.OrderPlaced(order)
	}

	return order, nil
}

// placeWithCompensation writes order, items and cart-clear as separate calls
// and deletes the order again if a later step fails.
func (s *CheckoutService) placeWithCompensation(ctx context.Context, order *models.Order, cart *CartSummary) ([]models.OrderItem, error) {
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, remoteFailure("create order", err)
	}

	items := snapshotItems(order.ID, cart)
	if err := s.orders.CreateOrderItems(ctx, items); err != nil {
		s.compensate(ctx, order.ID, err)
		return nil, fmt.Errorf("%w: order %s: %w", ErrOrphanedOrder, order.ID, remoteFailure("create order items", err))
	}

	if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
		s.compensate(ctx, order.ID, err)
		return nil, remoteFailure("clear cart", err)
	}

	return items, nil
}

func (s *CheckoutService) compensate(ctx context.Context, orderID uuid.UUID, cause error) {
	entry := logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"cause":    cause.Error(),
	})
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		entry.WithError(err).Error("Failed to delete order after partial checkout")
		return
	}
	entry.Warn("Deleted order after partial checkout")
}

func snapshotItems(orderID uuid.UUID, cart *CartSummary) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, models.OrderItem{
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.Price.UnitPrice,
			UnitVATRate: l.Price.VATRate,
			VATIncluded: l.Price.VATIncluded,
			LineTotal:   l.LineTotal.Round(2),
		})
	}
	return items
}

func defaultAddress(addresses []models.Address) *models.Address {
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i]
		}
	}
	if len(addresses) > 0 {
		return &addresses[0]
	}
	return nil
}

// IsCheckoutInputError reports whether err is caused by the buyer's input
// rather than the store.
func IsCheckoutInputError(err error) bool {
	return errors.Is(err, ErrAddressRequired) ||
		errors.Is(err, ErrAddressNotFound) ||
		errors.Is(err, ErrInvalidShippingOption) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrInvalidCheckoutState)
}
