// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"

	"github.com/ultrulas16/sinekapar/internal/config"
	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

// PaymentGateway is the subset of Stripe the storefront uses.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	Refund(ctx context.Context, intentID string) error
}

type stripeGateway struct{}

// NewStripeGateway sets the process-wide Stripe key and returns a gateway
// backed by the Stripe API.
func NewStripeGateway(secretKey string) PaymentGateway {
	stripe.Key = secretKey
	return stripeGateway{}
}

func (stripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return paymentintent.New(params)
}

func (stripeGateway) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return paymentintent.Get(id, params)
}

func (stripeGateway) Refund(ctx context.Context, intentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	_, err := refund.New(params)
	return err
}

type PaymentService struct {
	orders   repository.OrderRepository
	gateway  PaymentGateway
	currency string
}

type CreatePaymentIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type ConfirmPaymentRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
}

func NewPaymentService(orders repository.OrderRepository, gateway PaymentGateway, cfg *config.Config) *PaymentService {
	return &PaymentService{
		orders:   orders,
		gateway:  gateway,
		currency: cfg.Payment.Currency,
	}
}

func (s *PaymentService) loadPayableOrder(ctx context.Context, buyer BuyerContext, orderID uuid.UUID) (*models.Order, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, remoteFailure("get order", err)
	}
	if order.UserID != buyer.UserID {
		return nil, ErrOrderNotFound
	}
	if order.PaymentMethod != models.PaymentCard || order.Status == models.OrderStatusCancelled {
		return nil, ErrPaymentNotApplicable
	}
	return order, nil
}

// CreatePaymentIntent opens a card payment for the order total, in minor units.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, buyer BuyerContext, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	order, err := s.loadPayableOrder(ctx, buyer, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentStatusPending && order.PaymentStatus != models.PaymentStatusFailed {
		return nil, fmt.Errorf("%w: payment status is %s", ErrPaymentNotApplicable, order.PaymentStatus)
	}

	amount := order.TotalAmount.Round(2).Shift(2).IntPart()
	pi, err := s.gateway.CreateIntent(ctx, amount, s.currency, map[string]string{
		"order_id": order.ID.String(),
		"user_id":  buyer.UserID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPending, pi.ID); err != nil {
		return nil, remoteFailure("record payment reference", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
		Amount:       amount,
		Currency:     s.currency,
	}, nil
}

// ConfirmPayment reads the intent back from Stripe and mirrors its outcome
// onto the order's payment status. Only the order's current intent is
// accepted, and a paid order never leaves paid here.
func (s *PaymentService) ConfirmPayment(ctx context.Context, buyer BuyerContext, req *ConfirmPaymentRequest) (*models.Order, error) {
	order, err := s.loadPayableOrder(ctx, buyer, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentReference == "" || req.PaymentIntentID != order.PaymentReference {
		return nil, ErrForbidden
	}
	switch order.PaymentStatus {
	case models.PaymentStatusPaid:
		return order, nil
	case models.PaymentStatusPending, models.PaymentStatusFailed:
	default:
		return nil, fmt.Errorf("%w: payment status is %s", ErrPaymentNotApplicable, order.PaymentStatus)
	}

	pi, err := s.gateway.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	if pi.Metadata["order_id"] != order.ID.String() {
		return nil, ErrForbidden
	}

	var status models.PaymentStatus
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = models.PaymentStatusPaid
	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusProcessing:
		status = models.PaymentStatusPending
	default:
		status = models.PaymentStatusFailed
	}

	if err := s.orders.UpdatePaymentStatus(ctx, order.ID, status, pi.ID); err != nil {
		return nil, remoteFailure("update payment status", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id":          order.ID,
		"payment_intent_id": pi.ID,
		"payment_status":    status,
	}).Info("Payment confirmed")

	order.PaymentStatus = status
	order.PaymentReference = pi.ID
	return order, nil
}

// RefundOrder refunds a paid card order through Stripe. Only cancelled
// orders are refundable.
func (s *PaymentService) RefundOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, remoteFailure("get order", err)
	}
	if order.Status != models.OrderStatusCancelled ||
		order.PaymentStatus != models.PaymentStatusPaid ||
		order.PaymentReference == "" {
		return nil, ErrPaymentNotApplicable
	}

	if err := s.gateway.Refund(ctx, order.PaymentReference); err != nil {
		return nil, fmt.Errorf("failed to process refund: %w", err)
	}

	if err := s.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusRefunded, ""); err != nil {
		return nil, remoteFailure("update payment status", err)
	}

	logrus.WithField("order_id", order.ID).Info("Order refunded")

	order.PaymentStatus = models.PaymentStatusRefunded
	return order, nil
}
