package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPendingPayment, OrderStatusProcessing, true},
		{OrderStatusPendingPayment, OrderStatusPaymentFailed, true},
		{OrderStatusPendingPayment, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusPendingPayment, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusPaymentFailed, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestProduct_EffectivePrice(t *testing.T) {
	offer := 450.0
	zero := 0.0

	assert.Equal(t, 450.0, Product{Price: 500, OfferPrice: &offer}.EffectivePrice())
	assert.Equal(t, 500.0, Product{Price: 500, OfferPrice: &zero}.EffectivePrice())
	assert.Equal(t, 500.0, Product{Price: 500}.EffectivePrice())
}

func TestSnapshotItems(t *testing.T) {
	items := []LineItem{
		{
			Entry:   CartEntry{ID: "e1", ProductID: "p1", Quantity: 2},
			Product: &Product{ID: "p1", Name: "Shirt", Price: 300, Images: []string{"a.png", "b.png"}},
		},
		{Entry: CartEntry{ID: "e2", ProductID: "gone", Quantity: 1}},
		{
			Entry:   CartEntry{ID: "e3", ProductID: "p2", Quantity: 1, SelectedSize: "XL"},
			Product: &Product{ID: "p2", Name: "Jacket", Price: 900},
		},
	}

	got := SnapshotItems(items)

	assert.Len(t, got, 2)
	assert.Equal(t, OrderItem{ProductID: "p1", Name: "Shirt", Price: 300, Quantity: 2, Size: DefaultItemSize, Image: "a.png"}, got[0])
	assert.Equal(t, "XL", got[1].Size)
	assert.Equal(t, "", got[1].Image)
	assert.Equal(t, []string{"e1", "e3"}, EntryIDs(ResolvedItems(items)))
}

func TestProduct_InStock(t *testing.T) {
	p := Product{StockBySize: map[string]int{"M": 2, "L": 0}}

	assert.True(t, p.InStock("M"))
	assert.False(t, p.InStock("L"))
	assert.False(t, p.InStock("S"))
	assert.True(t, Product{}.InStock("anything"))
}

func TestOrderStatus_CanAdminTransitionTo(t *testing.T) {
	assert.False(t, OrderStatusPendingPayment.CanAdminTransitionTo(OrderStatusProcessing))
	assert.False(t, OrderStatusPendingPayment.CanAdminTransitionTo(OrderStatusPaymentFailed))
	assert.True(t, OrderStatusPendingPayment.CanAdminTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusPaymentFailed.CanAdminTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusProcessing.CanAdminTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusProcessing.CanAdminTransitionTo(OrderStatusDelivered))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPaymentFailed.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())

	assert.True(t, CheckoutStateReady.IsTerminal())
	assert.False(t, CheckoutStatePaymentMethodChosen.IsTerminal())
}
