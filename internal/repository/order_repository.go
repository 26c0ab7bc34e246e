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

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection(ordersCollection),
	}
}

func (m *mongoOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *mongoOrderRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := m.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoOrderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return m.find(ctx, bson.M{"user_id": userID}, 0)
}

// ListOrders returns all orders, newest first. A zero limit means no limit.
func (m *mongoOrderRepository) ListOrders(ctx context.Context, limit int64) ([]domain.Order, error) {
	return m.find(ctx, bson.M{}, limit)
}

func (m *mongoOrderRepository) find(ctx context.Context, filter bson.M, limit int64) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (m *mongoOrderRepository) SetGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error {
	update := bson.M{
		"$set": bson.M{
			"payment.gateway_order_id": gatewayOrderID,
			"updated_at":               time.Now().UTC(),
		},
	}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("failed to store gateway order id: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SettlePayment records the payment outcome of an order still pending
// payment. ErrStatusConflict is returned when it was already settled.
func (m *mongoOrderRepository) SettlePayment(ctx context.Context, orderID string, status domain.OrderStatus, payment domain.Payment) error {
	filter := bson.M{
		"_id":    orderID,
		"status": domain.OrderStatusPendingPayment,
	}
	set := bson.M{
		"status":         status,
		"payment.status": payment.Status,
		"updated_at":     time.Now().UTC(),
	}
	if payment.ID != "" {
		set["payment.id"] = payment.ID
	}
	if payment.Error != "" {
		set["payment.error"] = payment.Error
	}

	result, err := m.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to settle payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return m.missReason(ctx, orderID)
	}
	return nil
}

func (m *mongoOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	filter := bson.M{"_id": orderID, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return m.missReason(ctx, orderID)
	}
	return nil
}

func (m *mongoOrderRepository) ListStalePending(ctx context.Context, olderThan time.Duration) ([]domain.Order, error) {
	filter := bson.M{
		"status":     domain.OrderStatusPendingPayment,
		"created_at": bson.M{"$lt": time.Now().UTC().Add(-olderThan)},
	}
	return m.find(ctx, filter, 100)
}

func (m *mongoOrderRepository) missReason(ctx context.Context, orderID string) error {
	count, err := m.collection.CountDocuments(ctx, bson.M{"_id": orderID})
	if err != nil {
		return fmt.Errorf("failed to check order: %w", err)
	}
	if count == 0 {
		return ErrOrderNotFound
	}
	return ErrStatusConflict
}
