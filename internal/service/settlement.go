package service

import (
	"context"
	"errors"

	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"github.com/sathiya272004/my-ecommerce-app/pkg/logger"
	"go.uber.org/zap"
)

type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// PaymentOutcome is what the client reports after the gateway's payment sheet closes.
type PaymentOutcome struct {
	Kind      OutcomeKind
	PaymentID string
	Signature string
	Reason    string
}

// Settle applies a payment outcome to an order awaiting online payment.
// Only a verified success moves the order to processing and clears the
// committed cart entries; every other outcome fails the payment and leaves
// the cart alone.
func (s *OrderService) Settle(ctx context.Context, userID, orderID string, outcome PaymentOutcome) (*Result, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	switch outcome.Kind {
	case OutcomeSucceeded, OutcomeFailed, OutcomeCancelled:
	default:
		return nil, ErrInvalidPaymentOutcome
	}

	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPendingPayment || order.Payment.Method != domain.PaymentMethodOnline {
		return nil, ErrOrderNotPending
	}

	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("user_id", userID),
		zap.String("order_id", orderID),
		zap.String("outcome", string(outcome.Kind)),
	)

	if outcome.Kind == OutcomeSucceeded {
		if s.payment.gateway.VerifySignature(order.Payment.GatewayOrderID, outcome.PaymentID, outcome.Signature) {
			return s.settleSucceeded(ctx, log, order, outcome.PaymentID)
		}
		log.Warn("payment signature verification failed", zap.String("payment_id", outcome.PaymentID))
		outcome.Reason = "payment verification failed"
	}

	reason := outcome.Reason
	if reason == "" {
		if outcome.Kind == OutcomeCancelled {
			reason = "payment cancelled by user"
		} else {
			reason = "payment failed"
		}
	}
	return s.settleFailed(ctx, log, order, outcome.PaymentID, reason)
}

func (s *OrderService) settleSucceeded(ctx context.Context, log *zap.Logger, order *domain.Order, paymentID string) (*Result, error) {
	payment := domain.Payment{Status: domain.PaymentStatusCompleted, ID: paymentID}
	if err := s.settle(ctx, order.ID, domain.OrderStatusProcessing, payment); err != nil {
		log.Error("failed to record payment", zap.Error(err))
		return nil, err
	}
	order.Status = domain.OrderStatusProcessing
	order.Payment.Status = domain.PaymentStatusCompleted
	order.Payment.ID = paymentID
	log.Info("payment completed", zap.String("payment_id", paymentID))
	s.addEvent(ctx, log, domain.EventOrderSettled, order)

	return &Result{
		Order:     order,
		StaleCart: !s.clearCommitted(ctx, log, order),
	}, nil
}

func (s *OrderService) settleFailed(ctx context.Context, log *zap.Logger, order *domain.Order, paymentID, reason string) (*Result, error) {
	payment := domain.Payment{Status: domain.PaymentStatusFailed, ID: paymentID, Error: reason}
	if err := s.settle(ctx, order.ID, domain.OrderStatusPaymentFailed, payment); err != nil {
		log.Error("failed to record payment failure", zap.Error(err))
		return nil, err
	}
	order.Status = domain.OrderStatusPaymentFailed
	order.Payment.Status = domain.PaymentStatusFailed
	order.Payment.Error = reason
	if paymentID != "" {
		order.Payment.ID = paymentID
	}
	log.Info("payment not completed", zap.String("reason", reason))
	s.addEvent(ctx, log, domain.EventOrderSettled, order)

	return &Result{Order: order, Declined: true}, nil
}

func (s *OrderService) settle(ctx context.Context, orderID string, status domain.OrderStatus, payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.orders.SettlePayment(ctx, orderID, status, payment)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStatusConflict):
		return ErrOrderNotPending
	case errors.Is(err, repository.ErrOrderNotFound):
		return ErrOrderNotFound
	default:
		return storeError("settle payment", err)
	}
}

func (s *OrderService) ownedOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storeError("get order", err)
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
