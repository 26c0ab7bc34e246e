package domain

import "time"

const (
	EventOrderPlaced   = "order.placed"
	EventOrderSettled  = "order.settled"
	EventStatusChanged = "order.status_changed"
)

// OrderEvent is an outbox record published to the order event stream.
type OrderEvent struct {
	ID        string      `bson:"_id" json:"id"`
	Type      string      `bson:"type" json:"type"`
	OrderID   string      `bson:"order_id" json:"order_id"`
	UserID    string      `bson:"user_id" json:"user_id"`
	Status    OrderStatus `bson:"status" json:"status"`
	Total     float64     `bson:"total" json:"total"`
	Processed bool        `bson:"processed" json:"-"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}
