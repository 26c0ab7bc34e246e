package domain

import "time"

const DefaultAddressType = "Home"

type Address struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Name      string    `bson:"name" json:"name"`
	Phone     string    `bson:"phone" json:"phone"`
	Street    string    `bson:"street" json:"street"`
	City      string    `bson:"city" json:"city"`
	State     string    `bson:"state" json:"state"`
	Pincode   string    `bson:"pincode" json:"pincode"`
	Type      string    `bson:"type" json:"type"`
	IsDefault bool      `bson:"is_default" json:"is_default"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ShippingAddress is the copy of an Address embedded in an order.
type ShippingAddress struct {
	AddressID string `bson:"address_id" json:"address_id"`
	Name      string `bson:"name" json:"name"`
	Phone     string `bson:"phone" json:"phone"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Pincode   string `bson:"pincode" json:"pincode"`
	Type      string `bson:"type" json:"type"`
}

func (a Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		AddressID: a.ID,
		Name:      a.Name,
		Phone:     a.Phone,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		Pincode:   a.Pincode,
		Type:      a.Type,
	}
}
