package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAddressRepository struct {
	collection *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) AddressRepository {
	return &mongoAddressRepository{
		collection: db.Collection(addressesCollection),
	}
}

// ListAddresses returns the default address first, then newest first.
func (m *mongoAddressRepository) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "is_default", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer cursor.Close(ctx)

	addresses := make([]domain.Address, 0)
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("failed to decode addresses: %w", err)
	}
	return addresses, nil
}

func (m *mongoAddressRepository) GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	var address domain.Address
	err := m.collection.FindOne(ctx, bson.M{"_id": addressID, "user_id": userID}).Decode(&address)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	return &address, nil
}

// CreateAddress stores a new address. A default address clears the flag on
// the user's other addresses first.
func (m *mongoAddressRepository) CreateAddress(ctx context.Context, address *domain.Address) error {
	now := time.Now().UTC()
	if address.ID == "" {
		address.ID = uuid.NewString()
	}
	address.CreatedAt = now
	address.UpdatedAt = now

	if address.IsDefault {
		_, err := m.collection.UpdateMany(ctx,
			bson.M{"user_id": address.UserID, "is_default": true},
			bson.M{"$set": bson.M{"is_default": false, "updated_at": now}},
		)
		if err != nil {
			return fmt.Errorf("failed to clear default address: %w", err)
		}
	}

	if _, err := m.collection.InsertOne(ctx, address); err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}
