package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
)

var (
	ErrCartEntryNotFound = errors.New("cart entry not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrOrderNotFound     = errors.New("order not found")
	// ErrStatusConflict is returned by conditional order updates when the
	// order is no longer in the expected status.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// CartRepository stores cart entries. All operations are scoped to userID.
type CartRepository interface {
	ListEntries(ctx context.Context, userID string) ([]domain.CartEntry, error)
	AddEntry(ctx context.Context, entry *domain.CartEntry) (*domain.CartEntry, error)
	UpdateQuantity(ctx context.Context, userID, entryID string, quantity int) error
	DeleteEntry(ctx context.Context, userID, entryID string) error
	DeleteEntries(ctx context.Context, userID string, entryIDs []string) (int64, error)
}

type ProductRepository interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

type AddressRepository interface {
	ListAddresses(ctx context.Context, userID string) ([]domain.Address, error)
	GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error)
	CreateAddress(ctx context.Context, address *domain.Address) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListOrders(ctx context.Context, limit int64) ([]domain.Order, error)
	SetGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error
	SettlePayment(ctx context.Context, orderID string, status domain.OrderStatus, payment domain.Payment) error
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
	ListStalePending(ctx context.Context, olderThan time.Duration) ([]domain.Order, error)
}

// OutboxRepository holds order events until they are published.
type OutboxRepository interface {
	AddEvent(ctx context.Context, event *domain.OrderEvent) error
	GetUnprocessedEvents(ctx context.Context, limit int64) ([]*domain.OrderEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID string) error
}
