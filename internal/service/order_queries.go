package service

import (
	"context"
	"errors"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"go.uber.org/zap"
)

const adminListLimit = 500

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.ownedOrder(ctx, userID, orderID)
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	orders, err := s.orders.ListOrders(ctx, adminListLimit)
	if err != nil {
		return nil, storeError("list all orders", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along its fulfilment path. Payment
// transitions are reserved for settlement.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storeError("get order", err)
	}

	if order.Status.IsTerminal() || !order.Status.CanAdminTransitionTo(to) {
		return nil, ErrIllegalTransition
	}

	err = s.orders.UpdateStatus(ctx, orderID, order.Status, to)
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, ErrIllegalTransition
	}
	if err != nil {
		return nil, storeError("update order status", err)
	}

	s.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", order.Status.String()),
		zap.String("to", to.String()),
	)
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	s.addEvent(ctx, s.logger, domain.EventStatusChanged, order)
	return order, nil
}
