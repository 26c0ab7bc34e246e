package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOutboxRepository struct {
	collection *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) OutboxRepository {
	return &mongoOutboxRepository{
		collection: db.Collection(eventsCollection),
	}
}

func (m *mongoOutboxRepository) AddEvent(ctx context.Context, event *domain.OrderEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.Processed = false

	if _, err := m.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to add order event: %w", err)
	}
	return nil
}

// GetUnprocessedEvents returns unpublished events, oldest first.
func (m *mongoOutboxRepository) GetUnprocessedEvents(ctx context.Context, limit int64) ([]*domain.OrderEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := m.collection.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*domain.OrderEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (m *mongoOutboxRepository) MarkEventAsProcessed(ctx context.Context, eventID string) error {
	update := bson.M{"$set": bson.M{"processed": true, "processed_at": time.Now().UTC()}}
	if _, err := m.collection.UpdateOne(ctx, bson.M{"_id": eventID}, update); err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return nil
}
