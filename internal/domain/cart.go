package domain

import "time"

// CartEntry is one line of a user's cart as stored in the document store.
type CartEntry struct {
	ID                string    `bson:"_id" json:"id"`
	UserID            string    `bson:"user_id" json:"user_id"`
	ProductID         string    `bson:"product_id" json:"product_id"`
	Quantity          int       `bson:"quantity" json:"quantity"`
	SelectedSize      string    `bson:"selected_size" json:"selected_size"`
	UnitPriceSnapshot float64   `bson:"unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// LineItem pairs a cart entry with its resolved product.
// Product is nil when the referenced product no longer exists.
type LineItem struct {
	Entry   CartEntry `json:"entry"`
	Product *Product  `json:"product"`
}

func (l LineItem) Resolved() bool {
	return l.Product != nil
}

// UnitPrice is the product's current effective price, or 0 for an orphaned entry.
func (l LineItem) UnitPrice() float64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.EffectivePrice()
}

// ResolvedItems drops line items whose product could not be found.
func ResolvedItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Resolved() {
			out = append(out, it)
		}
	}
	return out
}

// EntryIDs returns the cart entry ids of the given line items, in order.
func EntryIDs(items []LineItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Entry.ID
	}
	return ids
}
