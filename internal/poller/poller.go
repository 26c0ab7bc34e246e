package poller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Poller consumes order events and drops the totals hint of the ordering
// user so no instance keeps showing totals for a cart that was committed.
type Poller struct {
	reader messageReader
	cache  cache.TotalsCache
	logger *zap.Logger
}

func NewPoller(totals cache.TotalsCache, topic, groupID string, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{reader: reader, cache: totals, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				p.logger.Error("error reading message", zap.Error(err))
			}
			continue
		}
		p.handleMessage(ctx, m)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("error closing reader", zap.Error(err))
	}
}

func (p *Poller) handleMessage(ctx context.Context, m kafka.Message) {
	var event domain.OrderEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.logger.Warn("error parsing order event", zap.Error(err), zap.Int64("offset", m.Offset))
		return
	}
	if event.UserID == "" {
		p.logger.Warn("order event without user_id", zap.String("order_id", event.OrderID))
		return
	}

	switch event.Type {
	case domain.EventOrderPlaced, domain.EventOrderSettled:
	default:
		return
	}

	if err := p.cache.Delete(ctx, event.UserID); err != nil {
		p.logger.Warn("failed to drop totals hint",
			zap.String("user_id", event.UserID),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("totals hint dropped",
		zap.String("user_id", event.UserID),
		zap.String("event_type", event.Type),
	)
}
