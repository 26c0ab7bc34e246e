package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUser = "user-1"

type testEnv struct {
	carts     *MockCartRepository
	products  *MockProductRepository
	addresses *MockAddressRepository
	orders    *MockOrderRepository
	outbox    *MockOutboxRepository
	cache     *MockTotalsCache
	gateway   *MockGateway

	cartService     *CartService
	checkoutService *CheckoutService
	orderService    *OrderService
}

func newTestEnv() *testEnv {
	offer := 150.0
	env := &testEnv{
		carts: &MockCartRepository{},
		products: &MockProductRepository{Products: map[string]*domain.Product{
			"A": {ID: "A", Name: "Kurta", Price: 500, Images: []string{"kurta.png"}},
			"B": {ID: "B", Name: "Cap", Price: 200, OfferPrice: &offer},
			"C": {ID: "C", Name: "Socks", Price: 50},
			"S": {ID: "S", Name: "Shirt", Price: 300, StockBySize: map[string]int{"M": 3, "L": 0}},
		}},
		addresses: &MockAddressRepository{Addresses: []domain.Address{
			{ID: "addr-home", UserID: testUser, Name: "Asha", Phone: "9876543210", Street: "1 MG Road", City: "Chennai", State: "TN", Pincode: "600001", Type: "Home", IsDefault: true},
			{ID: "addr-work", UserID: testUser, Name: "Asha", Phone: "9876543211", Street: "2 OMR", City: "Chennai", State: "TN", Pincode: "600096", Type: "Work"},
		}},
		orders:  &MockOrderRepository{Orders: map[string]*domain.Order{}},
		outbox:  &MockOutboxRepository{},
		cache:   &MockTotalsCache{Hints: map[string]*cache.TotalsHint{}},
		gateway: &MockGateway{Secret: "secret"},
	}

	logger := zap.NewNop()
	env.cartService = NewCartService(env.carts, NewProductHandler(env.products, time.Second), env.cache, logger, time.Second)
	env.checkoutService = NewCheckoutService(env.cartService, env.addresses, env.cache, logger, time.Second)
	env.orderService = NewOrderService(env.orders, env.carts, env.outbox,
		NewPaymentHandler(env.gateway, "INR", time.Second), env.cache, logger, time.Second)
	return env
}

func (e *testEnv) seedEntry(userID, productID string, qty int) string {
	stored, _ := e.carts.AddEntry(context.Background(), &domain.CartEntry{
		UserID: userID, ProductID: productID, Quantity: qty, SelectedSize: domain.DefaultItemSize,
	})
	return stored.ID
}

func TestAggregate_PreservesEntryOrder(t *testing.T) {
	env := newTestEnv()
	env.seedEntry(testUser, "C", 1)
	env.seedEntry(testUser, "A", 2)
	env.seedEntry(testUser, "B", 1)
	env.seedEntry("someone-else", "A", 1)

	items, err := env.cartService.Aggregate(context.Background(), testUser)

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "C", items[0].Product.ID)
	assert.Equal(t, "A", items[1].Product.ID)
	assert.Equal(t, "B", items[2].Product.ID)
	assert.Equal(t, 150.0, items[2].UnitPrice())
}

func TestAggregate_OrphanedProductTolerated(t *testing.T) {
	env := newTestEnv()
	env.seedEntry(testUser, "A", 1)
	orphan := env.seedEntry(testUser, "deleted-product", 4)

	items, err := env.cartService.Aggregate(context.Background(), testUser)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[1].Product)
	assert.Equal(t, orphan, items[1].Entry.ID)
	assert.Len(t, domain.ResolvedItems(items), 1)
}

func TestAggregate_ProductLookupFailure(t *testing.T) {
	env := newTestEnv()
	env.seedEntry(testUser, "A", 1)
	env.products.Err = errors.New("connection reset")

	_, err := env.cartService.Aggregate(context.Background(), testUser)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestAggregate_EmptyCartAndMissingUser(t *testing.T) {
	env := newTestEnv()

	items, err := env.cartService.Aggregate(context.Background(), testUser)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = env.cartService.Aggregate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestAggregate_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	env := newTestEnv()
	env.seedEntry(testUser, "A", 1)
	gate := make(chan struct{})
	env.carts.ListGate = gate

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := env.cartService.Aggregate(first, testUser)
		firstErr <- err
	}()
	require.Eventually(t, func() bool {
		return len(env.carts.ListDeadlines()) == 1
	}, time.Second, 5*time.Millisecond)

	type result struct {
		items []domain.LineItem
		err   error
	}
	second := make(chan result, 1)
	go func() {
		items, err := env.cartService.Aggregate(context.Background(), testUser)
		second <- result{items, err}
	}()

	cancelFirst()
	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	close(gate)
	got := <-second
	require.NoError(t, got.err)
	require.Len(t, got.items, 1)
	assert.Equal(t, "A", got.items[0].Product.ID)
}

func TestAggregate_ListEntriesIsBounded(t *testing.T) {
	env := newTestEnv()
	env.seedEntry(testUser, "A", 1)
	env.carts.ListGate = make(chan struct{})
	svc := NewCartService(env.carts, NewProductHandler(env.products, time.Second), env.cache, zap.NewNop(), 20*time.Millisecond)

	start := time.Now()
	_, err := svc.Aggregate(context.Background(), testUser)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCartReadsCarryDeadline(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.cartService.Aggregate(ctx, testUser)
	require.NoError(t, err)
	_, err = env.cartService.AddItem(ctx, testUser, "A", "", 1)
	require.NoError(t, err)

	deadlines := env.carts.ListDeadlines()
	require.Len(t, deadlines, 2)
	for _, d := range deadlines {
		assert.True(t, d)
	}
}

func TestAddItem_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tests := []struct {
		name      string
		productID string
		size      string
		qty       int
		want      error
	}{
		{"zero quantity", "A", "", 0, ErrInvalidQuantity},
		{"too many", "A", "", 100, ErrInvalidQuantity},
		{"unknown product", "nope", "", 1, ErrProductNotFound},
		{"size required", "S", "", 1, ErrSizeRequired},
		{"out of stock", "S", "L", 1, ErrOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.cartService.AddItem(ctx, testUser, tt.productID, tt.size, tt.qty)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, env.carts.IDs(testUser))
}

func TestAddItem_SnapshotsPriceAndInvalidatesHint(t *testing.T) {
	env := newTestEnv()
	env.cache.Hints[testUser] = &cache.TotalsHint{Totals: domain.Totals{Total: 40}}

	items, err := env.cartService.AddItem(context.Background(), testUser, "B", "", 2)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 150.0, items[0].Entry.UnitPriceSnapshot)
	assert.Equal(t, domain.DefaultItemSize, items[0].Entry.SelectedSize)
	assert.NotContains(t, env.cache.Hints, testUser)

	items, err = env.cartService.AddItem(context.Background(), testUser, "B", "", 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Entry.Quantity)
	assert.Equal(t, 1, items[1].Entry.Quantity)
	assert.NotEqual(t, items[0].Entry.ID, items[1].Entry.ID)
}

func TestAddItem_RepeatedAddsNeverExceedQuantityLimit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.cartService.AddItem(ctx, testUser, "C", "", 60)
	require.NoError(t, err)
	items, err := env.cartService.AddItem(ctx, testUser, "C", "", 60)
	require.NoError(t, err)

	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, 60, item.Entry.Quantity)
		assert.LessOrEqual(t, item.Entry.Quantity, MaxQuantity)
	}
}

func TestAddItem_StoreFailureKeepsHint(t *testing.T) {
	env := newTestEnv()
	env.cache.Hints[testUser] = &cache.TotalsHint{Totals: domain.Totals{Total: 40}}
	env.carts.AddErr = errors.New("write concern error")

	_, err := env.cartService.AddItem(context.Background(), testUser, "A", "", 1)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, env.cache.Hints, testUser)
	assert.Equal(t, 0, env.cache.Deletes)
}

func TestUpdateQuantity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := env.seedEntry(testUser, "A", 1)

	items, err := env.cartService.UpdateQuantity(ctx, testUser, id, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Entry.Quantity)

	_, err = env.cartService.UpdateQuantity(ctx, testUser, id, 100)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = env.cartService.UpdateQuantity(ctx, testUser, "missing", 2)
	assert.ErrorIs(t, err, ErrCartEntryNotFound)

	items, err = env.cartService.UpdateQuantity(ctx, testUser, id, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, env.carts.IDs(testUser))
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	keep := env.seedEntry(testUser, "A", 1)
	drop := env.seedEntry(testUser, "C", 1)

	items, err := env.cartService.RemoveItem(ctx, testUser, drop)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep, items[0].Entry.ID)

	_, err = env.cartService.RemoveItem(ctx, "intruder", keep)
	assert.ErrorIs(t, err, ErrCartEntryNotFound)
}
