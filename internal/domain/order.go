package domain

import "time"

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "Pending Payment"
	OrderStatusProcessing     OrderStatus = "Processing"
	OrderStatusPaymentFailed  OrderStatus = "Payment Failed"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment: {OrderStatusProcessing, OrderStatusPaymentFailed, OrderStatusCancelled},
	OrderStatusPaymentFailed:  {OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusDelivered, OrderStatusCancelled},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanAdminTransitionTo excludes the payment outcomes, which only settlement may set.
func (s OrderStatus) CanAdminTransitionTo(next OrderStatus) bool {
	if s == OrderStatusPendingPayment && next != OrderStatusCancelled {
		return false
	}
	return s.CanTransitionTo(next)
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusProcessing, OrderStatusPaymentFailed,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodOnline || m == PaymentMethodCOD
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	Method         PaymentMethod `bson:"method" json:"method"`
	Status         PaymentStatus `bson:"status" json:"status"`
	ID             string        `bson:"id,omitempty" json:"id,omitempty"`
	GatewayOrderID string        `bson:"gateway_order_id,omitempty" json:"gateway_order_id,omitempty"`
	Error          string        `bson:"error,omitempty" json:"error,omitempty"`
}

// OrderItem is a price snapshot of a cart line at commit time.
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Size      string  `bson:"size" json:"size"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
}

const DefaultItemSize = "Standard"

type Order struct {
	ID        string          `bson:"_id" json:"id"`
	UserID    string          `bson:"user_id" json:"user_id"`
	UserEmail string          `bson:"user_email,omitempty" json:"user_email,omitempty"`
	UserName  string          `bson:"user_name,omitempty" json:"user_name,omitempty"`
	Items     []OrderItem     `bson:"items" json:"items"`
	Address   ShippingAddress `bson:"address" json:"address"`
	Payment   Payment         `bson:"payment" json:"payment"`
	Subtotal  float64         `bson:"subtotal" json:"subtotal"`
	Tax       float64         `bson:"tax" json:"tax"`
	Shipping  float64         `bson:"shipping" json:"shipping"`
	Total     float64         `bson:"total" json:"total"`
	Status    OrderStatus     `bson:"status" json:"status"`
	// Cart entries this order consumes; removed from the cart once the order commits.
	CartEntryIDs []string  `bson:"cart_entry_ids" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// SnapshotItems copies resolved line items into order items. Orphans are skipped.
func SnapshotItems(items []LineItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		size := it.Entry.SelectedSize
		if size == "" {
			size = DefaultItemSize
		}
		out = append(out, OrderItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.EffectivePrice(),
			Quantity:  it.Entry.Quantity,
			Size:      size,
			Image:     it.Product.PrimaryImage(),
		})
	}
	return out
}
