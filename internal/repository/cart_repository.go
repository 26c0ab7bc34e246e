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

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{
		collection: db.Collection(cartsCollection),
	}
}

func (m *mongoCartRepository) ListEntries(ctx context.Context, userID string) ([]domain.CartEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]domain.CartEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cart entries: %w", err)
	}
	return entries, nil
}

// AddEntry always stores a new entry, even when the user already holds the
// same product and size. The stored entry is returned.
func (m *mongoCartRepository) AddEntry(ctx context.Context, entry *domain.CartEntry) (*domain.CartEntry, error) {
	now := time.Now().UTC()

	stored := *entry
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to add cart entry: %w", err)
	}
	return &stored, nil
}

func (m *mongoCartRepository) UpdateQuantity(ctx context.Context, userID, entryID string, quantity int) error {
	filter := bson.M{"_id": entryID, "user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart entry quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartEntryNotFound
	}
	return nil
}

func (m *mongoCartRepository) DeleteEntry(ctx context.Context, userID, entryID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": entryID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete cart entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartEntryNotFound
	}
	return nil
}

// DeleteEntries removes exactly the given entries of userID and reports how
// many were deleted. Entries already gone are not an error.
func (m *mongoCartRepository) DeleteEntries(ctx context.Context, userID string, entryIDs []string) (int64, error) {
	if len(entryIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"user_id": userID,
		"_id":     bson.M{"$in": entryIDs},
	}
	result, err := m.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart entries: %w", err)
	}
	return result.DeletedCount, nil
}
