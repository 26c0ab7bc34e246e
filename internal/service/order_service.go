package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/gateway"
	"github.com/sathiya272004/my-ecommerce-app/internal/pricing"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"github.com/sathiya272004/my-ecommerce-app/pkg/logger"
	"go.uber.org/zap"
)

// Handoff carries what the client needs to open the gateway's payment sheet.
type Handoff struct {
	OrderID        string `json:"order_id"`
	KeyID          string `json:"key_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

type Result struct {
	Order *domain.Order `json:"order"`
	// StaleCart is set when the order committed but its cart entries could
	// not be removed.
	StaleCart bool     `json:"stale_cart"`
	Declined  bool     `json:"declined"`
	Handoff   *Handoff `json:"handoff,omitempty"`
}

type OrderService struct {
	orders  repository.OrderRepository
	carts   repository.CartRepository
	outbox  repository.OutboxRepository
	payment *PaymentHandler
	cache   cache.TotalsCache
	logger  *zap.Logger
	timeout time.Duration

	inFlight sync.Map // userID -> struct{}
}

func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	outbox repository.OutboxRepository,
	payment *PaymentHandler,
	totals cache.TotalsCache,
	logger *zap.Logger,
	timeout time.Duration,
) *OrderService {
	return &OrderService{
		orders:  orders,
		carts:   carts,
		outbox:  outbox,
		payment: payment,
		cache:   totals,
		logger:  logger,
		timeout: timeout,
	}
}

// PlaceOrder commits a ready draft. Totals are recomputed from the draft's
// line items; cached or confirmed totals are never trusted.
func (s *OrderService) PlaceOrder(ctx context.Context, draft domain.OrderDraft) (*Result, error) {
	if draft.UserID == "" {
		return nil, ErrUserRequired
	}
	if !draft.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	resolved := domain.ResolvedItems(draft.LineItems)
	if len(resolved) == 0 {
		return nil, ErrEmptyCart
	}

	if _, busy := s.inFlight.LoadOrStore(draft.UserID, struct{}{}); busy {
		return nil, ErrCheckoutInFlight
	}
	defer s.inFlight.Delete(draft.UserID)

	log := logger.WithTrace(ctx, s.logger).With(zap.String("user_id", draft.UserID))

	totals := pricing.Calculate(resolved)
	if !pricing.Equal(totals, draft.Totals) {
		log.Warn("totals changed since confirmation",
			zap.Float64("confirmed", draft.Totals.Total),
			zap.Float64("authoritative", totals.Total),
		)
	}
	s.compareHint(ctx, log, draft.UserID, totals)

	order := &domain.Order{
		UserID:       draft.UserID,
		UserEmail:    draft.UserEmail,
		UserName:     draft.UserName,
		Items:        domain.SnapshotItems(resolved),
		Address:      draft.Address.Snapshot(),
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Shipping:     totals.Shipping,
		Total:        totals.Total,
		CartEntryIDs: committedIDs(draft, resolved),
		Payment: domain.Payment{
			Method: draft.PaymentMethod,
			Status: domain.PaymentStatusPending,
		},
	}

	if draft.PaymentMethod == domain.PaymentMethodCOD {
		return s.placeCOD(ctx, log, order)
	}
	return s.placeOnline(ctx, log, order, draft)
}

func (s *OrderService) placeCOD(ctx context.Context, log *zap.Logger, order *domain.Order) (*Result, error) {
	order.Status = domain.OrderStatusProcessing
	if err := s.createOrder(ctx, order); err != nil {
		log.Error("failed to create cod order", zap.Error(err))
		return nil, storeError("create order", err)
	}
	log.Info("order placed", zap.String("order_id", order.ID), zap.String("method", string(order.Payment.Method)))
	s.addEvent(ctx, log, domain.EventOrderPlaced, order)

	return &Result{
		Order:     order,
		StaleCart: !s.clearCommitted(ctx, log, order),
	}, nil
}

func (s *OrderService) placeOnline(ctx context.Context, log *zap.Logger, order *domain.Order, draft domain.OrderDraft) (*Result, error) {
	order.Status = domain.OrderStatusPendingPayment
	if err := s.createOrder(ctx, order); err != nil {
		log.Error("failed to create pending order", zap.Error(err))
		return nil, storeError("create order", err)
	}
	log = log.With(zap.String("order_id", order.ID))
	s.addEvent(ctx, log, domain.EventOrderPlaced, order)

	req := gateway.OrderRequest{
		Amount:   pricing.MinorUnits(order.Total),
		Currency: s.payment.currency,
		Receipt:  "order_" + order.ID,
		Notes: map[string]string{
			"order_id": order.ID,
			"user_id":  order.UserID,
		},
	}
	remote, err := s.payment.createOrder(ctx, req)
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) || errors.Is(err, gateway.ErrGatewayUnavailable) {
			log.Warn("gateway rejected order", zap.Error(err))
			s.markFailed(ctx, log, order, err.Error())
			return nil, fmt.Errorf("%w: order %s: %v", ErrPaymentFailed, order.ID, err)
		}
		log.Warn("gateway outcome unknown, order left pending", zap.Error(err))
		return nil, fmt.Errorf("%w: order %s", ErrPaymentUncertain, order.ID)
	}

	ctxStore, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.orders.SetGatewayOrder(ctxStore, order.ID, remote.ID); err != nil {
		log.Error("failed to store gateway order id", zap.String("gateway_order_id", remote.ID), zap.Error(err))
		return nil, storeError("store gateway order", err)
	}
	order.Payment.GatewayOrderID = remote.ID

	return &Result{
		Order: order,
		Handoff: &Handoff{
			OrderID:        order.ID,
			KeyID:          s.payment.gateway.KeyID(),
			GatewayOrderID: remote.ID,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Name:           draft.UserName,
			Email:          draft.UserEmail,
			Phone:          draft.Address.Phone,
		},
	}, nil
}

func (s *OrderService) createOrder(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.orders.CreateOrder(ctx, order)
}

// markFailed records a definitive gateway rejection on a pending order.
func (s *OrderService) markFailed(ctx context.Context, log *zap.Logger, order *domain.Order, reason string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payment := domain.Payment{Status: domain.PaymentStatusFailed, Error: reason}
	if err := s.orders.SettlePayment(ctx, order.ID, domain.OrderStatusPaymentFailed, payment); err != nil {
		log.Error("failed to mark order as payment failed", zap.Error(err))
		return
	}
	order.Status = domain.OrderStatusPaymentFailed
	order.Payment.Status = domain.PaymentStatusFailed
	order.Payment.Error = reason
	s.addEvent(ctx, log, domain.EventOrderSettled, order)
}

// clearCommitted removes the cart entries the order consumed. It reports
// false when they could not be removed; the order stands either way.
func (s *OrderService) clearCommitted(ctx context.Context, log *zap.Logger, order *domain.Order) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deleted, err := s.carts.DeleteEntries(ctx, order.UserID, order.CartEntryIDs)
	if err != nil {
		log.Warn("order committed but cart entries remain",
			zap.String("order_id", order.ID),
			zap.Strings("entry_ids", order.CartEntryIDs),
			zap.Error(err),
		)
		return false
	}
	if int(deleted) != len(order.CartEntryIDs) {
		log.Info("some committed cart entries were already removed",
			zap.String("order_id", order.ID),
			zap.Int64("deleted", deleted),
			zap.Int("expected", len(order.CartEntryIDs)),
		)
	}
	s.invalidateHint(order.UserID)
	return true
}

func (s *OrderService) addEvent(ctx context.Context, log *zap.Logger, eventType string, order *domain.Order) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	event := &domain.OrderEvent{
		Type:    eventType,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Total:   order.Total,
	}
	if err := s.outbox.AddEvent(ctx, event); err != nil {
		log.Error("failed to add order event", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *OrderService) compareHint(ctx context.Context, log *zap.Logger, userID string, totals domain.Totals) {
	hint, err := s.cache.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn("totals hint read failed", zap.Error(err))
		}
		return
	}
	if !pricing.Equal(hint.Totals, totals) {
		log.Warn("ignoring stale totals hint",
			zap.Float64("hint", hint.Totals.Total),
			zap.Float64("authoritative", totals.Total),
		)
	}
}

func (s *OrderService) invalidateHint(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("totals hint invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// committedIDs keeps the draft's committed entries that are still priced in
// the order.
func committedIDs(draft domain.OrderDraft, resolved []domain.LineItem) []string {
	if len(draft.CommittedEntryIDs) == 0 {
		return domain.EntryIDs(resolved)
	}
	priced := make(map[string]struct{}, len(resolved))
	for _, it := range resolved {
		priced[it.Entry.ID] = struct{}{}
	}
	ids := make([]string, 0, len(draft.CommittedEntryIDs))
	for _, id := range draft.CommittedEntryIDs {
		if _, ok := priced[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
