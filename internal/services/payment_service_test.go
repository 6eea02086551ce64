package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v74"

	"github.com/ultrulas16/sinekapar/internal/config"
	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

type fakeGateway struct {
	intents  map[string]*stripe.PaymentIntent
	refunded []string
	failNext error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*stripe.PaymentIntent)}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	if err := g.failNext; err != nil {
		g.failNext = nil
		return nil, err
	}
	pi := &stripe.PaymentIntent{
		ID:           "pi_" + uuid.NewString()[:8],
		ClientSecret: "secret",
		Amount:       amountMinor,
		Currency:     stripe.Currency(currency),
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Metadata:     metadata,
	}
	g.intents[pi.ID] = pi
	return pi, nil
}

func (g *fakeGateway) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	pi, ok := g.intents[id]
	if !ok {
		return nil, errors.New("no such payment_intent")
	}
	return pi, nil
}

func (g *fakeGateway) Refund(ctx context.Context, intentID string) error {
	g.refunded = append(g.refunded, intentID)
	return nil
}

type PaymentServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *repository.MemoryStore
	gateway *fakeGateway
	service *PaymentService
	buyer   BuyerContext
	order   *models.Order
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.gateway = newFakeGateway()
	s.service = NewPaymentService(s.store, s.gateway, &config.Config{
		Payment: config.PaymentConfig{Currency: "try"},
	})
	s.buyer = endUser()
	s.order = seedOrder(s.T(), s.store, s.buyer.UserID, models.OrderStatusPending)
}

func (s *PaymentServiceTestSuite) storedOrder() *models.Order {
	o, err := s.store.GetOrder(s.ctx, s.order.ID)
	s.Require().NoError(err)
	return o
}

func (s *PaymentServiceTestSuite) TestCreatePaymentIntentInMinorUnits() {
	resp, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: s.order.ID})
	s.Require().NoError(err)

	s.Equal(int64(25500), resp.Amount)
	s.Equal("try", resp.Currency)
	s.Equal(resp.PaymentID, s.storedOrder().PaymentReference)
	s.Equal(s.order.ID.String(), s.gateway.intents[resp.PaymentID].Metadata["order_id"])
}

func (s *PaymentServiceTestSuite) TestCreatePaymentIntentRejectsOtherBuyer() {
	_, err := s.service.CreatePaymentIntent(s.ctx, endUser(), &CreatePaymentIntentRequest{OrderID: s.order.ID})
	s.ErrorIs(err, ErrOrderNotFound)
}

func (s *PaymentServiceTestSuite) TestCreatePaymentIntentNonCardOrder() {
	order := &models.Order{
		UserID:        s.buyer.UserID,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: models.PaymentCOD,
		TotalAmount:   dec("100.00"),
	}
	s.Require().NoError(s.store.CreateOrder(s.ctx, order))

	_, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: order.ID})
	s.ErrorIs(err, ErrPaymentNotApplicable)
}

func (s *PaymentServiceTestSuite) TestCreatePaymentIntentGatewayError() {
	s.gateway.failNext = errors.New("card_declined")

	_, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: s.order.ID})
	s.Require().Error(err)
	s.NotErrorIs(err, ErrRemoteFailure)
	s.Empty(s.storedOrder().PaymentReference)
}

func (s *PaymentServiceTestSuite) TestConfirmPaymentMapsStatus() {
	tests := []struct {
		stripeStatus stripe.PaymentIntentStatus
		want         models.PaymentStatus
	}{
		{stripe.PaymentIntentStatusProcessing, models.PaymentStatusPending},
		{stripe.PaymentIntentStatusRequiresAction, models.PaymentStatusPending},
		{stripe.PaymentIntentStatusCanceled, models.PaymentStatusFailed},
		{stripe.PaymentIntentStatusSucceeded, models.PaymentStatusPaid},
	}

	for _, tt := range tests {
		// pending and failed orders may open a new intent
		resp, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: s.order.ID})
		s.Require().NoError(err)
		s.gateway.intents[resp.PaymentID].Status = tt.stripeStatus

		order, err := s.service.ConfirmPayment(s.ctx, s.buyer, &ConfirmPaymentRequest{
			OrderID:         s.order.ID,
			PaymentIntentID: resp.PaymentID,
		})
		s.Require().NoError(err)
		s.Equal(tt.want, order.PaymentStatus)
		s.Equal(tt.want, s.storedOrder().PaymentStatus)
	}

	// paid orders cannot open another intent
	_, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: s.order.ID})
	s.ErrorIs(err, ErrPaymentNotApplicable)
}

func (s *PaymentServiceTestSuite) TestConfirmPaymentForeignIntent() {
	other := seedOrder(s.T(), s.store, s.buyer.UserID, models.OrderStatusPending)
	resp, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: other.ID})
	s.Require().NoError(err)

	_, err = s.service.ConfirmPayment(s.ctx, s.buyer, &ConfirmPaymentRequest{
		OrderID:         s.order.ID,
		PaymentIntentID: resp.PaymentID,
	})
	s.ErrorIs(err, ErrForbidden)
}

func (s *PaymentServiceTestSuite) confirm(intentID string) (*models.Order, error) {
	return s.service.ConfirmPayment(s.ctx, s.buyer, &ConfirmPaymentRequest{
		OrderID:         s.order.ID,
		PaymentIntentID: intentID,
	})
}

func (s *PaymentServiceTestSuite) TestConfirmPaymentIgnoresStaleIntent() {
	first, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: s.order.ID})
	s.Require().NoError(err)
	s.gateway.intents[first.PaymentID].Status = stripe.PaymentIntentStatusCanceled
	order, err := s.confirm(first.PaymentID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusFailed, order.PaymentStatus)

	second, err := s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: s.order.ID})
	s.Require().NoError(err)
	s.gateway.intents[second.PaymentID].Status = stripe.PaymentIntentStatusSucceeded
	order, err = s.confirm(second.PaymentID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusPaid, order.PaymentStatus)

	_, err = s.confirm(first.PaymentID)
	s.ErrorIs(err, ErrForbidden)

	stored := s.storedOrder()
	s.Equal(models.PaymentStatusPaid, stored.PaymentStatus)
	s.Equal(second.PaymentID, stored.PaymentReference)

	// confirming the paid intent again is a no-op
	s.gateway.intents[second.PaymentID].Status = stripe.PaymentIntentStatusCanceled
	order, err = s.confirm(second.PaymentID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusPaid, order.PaymentStatus)
	s.Equal(models.PaymentStatusPaid, s.storedOrder().PaymentStatus)

	_, err = s.service.CreatePaymentIntent(s.ctx, s.buyer, &CreatePaymentIntentRequest{OrderID: s.order.ID})
	s.ErrorIs(err, ErrPaymentNotApplicable)
}

func (s *PaymentServiceTestSuite) TestConfirmPaymentWithoutIntent() {
	_, err := s.confirm("pi_unknown")
	s.ErrorIs(err, ErrForbidden)
}

func (s *PaymentServiceTestSuite) TestRefundOrder() {
	_, err := s.service.RefundOrder(s.ctx, s.order.ID)
	s.ErrorIs(err, ErrPaymentNotApplicable)

	s.Require().NoError(s.store.UpdatePaymentStatus(s.ctx, s.order.ID, models.PaymentStatusPaid, "pi_paid"))
	_, err = s.service.RefundOrder(s.ctx, s.order.ID)
	s.ErrorIs(err, ErrPaymentNotApplicable, "paid but not cancelled")

	s.Require().NoError(s.store.UpdateOrderStatus(s.ctx, s.order.ID, models.OrderStatusCancelled))
	order, err := s.service.RefundOrder(s.ctx, s.order.ID)
	s.Require().NoError(err)

	s.Equal(models.PaymentStatusRefunded, order.PaymentStatus)
	s.Equal(models.PaymentStatusRefunded, s.storedOrder().PaymentStatus)
	s.Equal([]string{"pi_paid"}, s.gateway.refunded)

	_, err = s.service.RefundOrder(s.ctx, uuid.New())
	s.ErrorIs(err, ErrOrderNotFound)
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
