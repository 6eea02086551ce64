// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type OrderService struct {
	orders   repository.OrderRepository
	notifier OrderNotifier
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// validTransitions is the order lifecycle. Payment status moves independently.
var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// SetNotifier makes status changes email the buyer.
func (s *OrderService) SetNotifier(n OrderNotifier) {
	s.notifier = n
}

// ListOrders returns the buyer's orders, or every order for an admin with all set.
func (s *OrderService) ListOrders(ctx context.Context, buyer BuyerContext, all bool, params utils.PaginationParams) ([]models.Order, int64, error) {
	if !buyer.Authenticated() {
		return nil, 0, ErrNotAuthenticated
	}

	var owner *uuid.UUID
	if !all || !buyer.IsAdmin() {
		owner = &buyer.UserID
	}

	orders, total, err := s.orders.ListOrders(ctx, owner, params.Offset(), params.Limit)
	if err != nil {
		return nil, 0, remoteFailure("list orders", err)
	}
	return orders, total, nil
}

// GetOrder returns an order owned by the buyer; admins can read any order.
func (s *OrderService) GetOrder(ctx context.Context, buyer BuyerContext, id uuid.UUID) (*models.Order, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, remoteFailure("get order", err)
	}

	if order.UserID != buyer.UserID && !buyer.IsAdmin() {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, remoteFailure("get order", err)
	}

	allowed := validTransitions[order.Status]
	valid := false
	for _, st := range allowed {
		if st == newStatus {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidStatusTransition, order.Status, newStatus)
	}

	if err := s.orders.UpdateOrderStatus(ctx, id, newStatus); err != nil {
		return nil, remoteFailure("update order status", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id": id,
		"from":     order.Status,
		"to":       newStatus,
	}).Info("Order status changed")

	order.Status = newStatus
	if s.notifier != nil {
		s.notifier.OrderStatusChanged(order)
	}
	return order, nil
}
