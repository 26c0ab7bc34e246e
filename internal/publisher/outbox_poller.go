package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const batchSize = 100

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StaleOrderLister finds orders left awaiting payment.
type StaleOrderLister interface {
	ListStalePending(ctx context.Context, olderThan time.Duration) ([]domain.Order, error)
}

type OutboxPoller struct {
	timeout    time.Duration
	eventTick  time.Duration
	staleTick  time.Duration
	staleAfter time.Duration
	outbox     repository.OutboxRepository
	orders     StaleOrderLister
	writer     messageWriter
	logger     *zap.Logger
}

func NewOutboxPoller(outbox repository.OutboxRepository, orders StaleOrderLister, staleAfter time.Duration, topic string, logger *zap.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		timeout:    5 * time.Second,
		eventTick:  time.Second,
		staleTick:  time.Minute,
		staleAfter: staleAfter,
		outbox:     outbox,
		orders:     orders,
		writer:     w,
		logger:     logger,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	staleTicker := time.NewTicker(p.staleTick)
	defer eventTicker.Stop()
	defer staleTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-staleTicker.C:
			p.reportStalePending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Warn("error closing kafka writer", zap.Error(err))
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	events, err := p.outbox.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.logger.Error("failed to fetch order events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.logger.Error("failed to publish order event", zap.String("event_id", event.ID), zap.Error(err))
			continue
		}
		if err := p.outbox.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.logger.Error("failed to mark order event as processed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
}

// reportStalePending surfaces online orders whose payment never settled.
// They are not reconciled here.
func (p *OutboxPoller) reportStalePending(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	orders, err := p.orders.ListStalePending(ctx, p.staleAfter)
	if err != nil {
		p.logger.Error("failed to list stale pending orders", zap.Error(err))
		return
	}
	for _, o := range orders {
		p.logger.Warn("order awaiting payment beyond threshold",
			zap.String("order_id", o.ID),
			zap.String("user_id", o.UserID),
			zap.String("gateway_order_id", o.Payment.GatewayOrderID),
			zap.Time("created_at", o.CreatedAt),
		)
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID), // per-order ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
