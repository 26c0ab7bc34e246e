package domain

import "time"

// Product is read-only to the checkout pipeline.
type Product struct {
	ID          string         `bson:"_id" json:"id"`
	Name        string         `bson:"name" json:"name"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID  string         `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Price       float64        `bson:"price" json:"price"`
	OfferPrice  *float64       `bson:"offer_price,omitempty" json:"offer_price,omitempty"`
	Images      []string       `bson:"images" json:"images"`
	StockBySize map[string]int `bson:"stock_by_size,omitempty" json:"stock_by_size,omitempty"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
}

// EffectivePrice prefers a positive offer price over the list price.
func (p Product) EffectivePrice() float64 {
	if p.OfferPrice != nil && *p.OfferPrice > 0 {
		return *p.OfferPrice
	}
	return p.Price
}

// PrimaryImage returns the first image url or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// InStock reports whether the size can be added to a cart. Products without
// per-size stock are treated as unconstrained.
func (p Product) InStock(size string) bool {
	if len(p.StockBySize) == 0 {
		return true
	}
	return p.StockBySize[size] > 0
}
