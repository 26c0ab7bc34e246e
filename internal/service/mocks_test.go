package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/gateway"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
)

// MockCartRepository implements repository.CartRepository in memory.
type MockCartRepository struct {
	mu         sync.Mutex
	Entries    []domain.CartEntry
	nextID     int
	ListGate   chan struct{} // when set, ListEntries blocks until closed or ctx ends
	listCtxs   []bool        // whether each ListEntries call carried a deadline
	ListErr    error
	AddErr     error
	UpdateErr  error
	DeleteErr  error
	ClearErr   error
	ClearCalls int
}

func (m *MockCartRepository) ListEntries(ctx context.Context, userID string) ([]domain.CartEntry, error) {
	m.mu.Lock()
	_, hasDeadline := ctx.Deadline()
	m.listCtxs = append(m.listCtxs, hasDeadline)
	gate := m.ListGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.CartEntry, 0)
	for _, e := range m.Entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListDeadlines reports, per ListEntries call, whether its context had a deadline.
func (m *MockCartRepository) ListDeadlines() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.listCtxs...)
}

func (m *MockCartRepository) AddEntry(_ context.Context, entry *domain.CartEntry) (*domain.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	m.nextID++
	stored := *entry
	stored.ID = fmt.Sprintf("entry-%d", m.nextID)
	stored.CreatedAt = time.Now()
	m.Entries = append(m.Entries, stored)
	return &stored, nil
}

func (m *MockCartRepository) UpdateQuantity(_ context.Context, userID, entryID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i, e := range m.Entries {
		if e.ID == entryID && e.UserID == userID {
			m.Entries[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrCartEntryNotFound
}

func (m *MockCartRepository) DeleteEntry(_ context.Context, userID, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, e := range m.Entries {
		if e.ID == entryID && e.UserID == userID {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartEntryNotFound
}

func (m *MockCartRepository) DeleteEntries(_ context.Context, userID string, entryIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearErr != nil {
		return 0, m.ClearErr
	}
	drop := make(map[string]bool, len(entryIDs))
	for _, id := range entryIDs {
		drop[id] = true
	}
	kept := m.Entries[:0]
	var deleted int64
	for _, e := range m.Entries {
		if e.UserID == userID && drop[e.ID] {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.Entries = kept
	return deleted, nil
}

func (m *MockCartRepository) IDs(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0)
	for _, e := range m.Entries {
		if e.UserID == userID {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// MockProductRepository implements repository.ProductRepository for testing
type MockProductRepository struct {
	mu       sync.Mutex
	Products map[string]*domain.Product
	Err      error
	Calls    int
}

func (m *MockProductRepository) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

// MockAddressRepository implements repository.AddressRepository for testing
type MockAddressRepository struct {
	Addresses []domain.Address
	ListErr   error
	CreateErr error
	Created   *domain.Address
}

func (m *MockAddressRepository) ListAddresses(_ context.Context, userID string) ([]domain.Address, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Address, 0)
	for _, a := range m.Addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAddressRepository) GetAddress(_ context.Context, userID, addressID string) (*domain.Address, error) {
	for _, a := range m.Addresses {
		if a.ID == addressID && a.UserID == userID {
			addr := a
			return &addr, nil
		}
	}
	return nil, repository.ErrAddressNotFound
}

func (m *MockAddressRepository) CreateAddress(_ context.Context, address *domain.Address) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	address.ID = fmt.Sprintf("addr-%d", len(m.Addresses)+1)
	m.Created = address
	m.Addresses = append(m.Addresses, *address)
	return nil
}

// MockOrderRepository implements repository.OrderRepository in memory.
type MockOrderRepository struct {
	mu            sync.Mutex
	Orders        map[string]*domain.Order
	CreateErr     error
	SetGatewayErr error
	SettleErr     error
	nextID        int
}

func (m *MockOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if m.Orders == nil {
		m.Orders = make(map[string]*domain.Order)
	}
	m.nextID++
	order.ID = fmt.Sprintf("order-%d", m.nextID)
	order.CreatedAt = time.Now()
	stored := *order
	m.Orders[order.ID] = &stored
	return nil
}

func (m *MockOrderRepository) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order := *o
	return &order, nil
}

func (m *MockOrderRepository) ListOrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, 0)
	for _, o := range m.Orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) ListOrders(_ context.Context, _ int64) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, 0, len(m.Orders))
	for _, o := range m.Orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *MockOrderRepository) SetGatewayOrder(_ context.Context, orderID, gatewayOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetGatewayErr != nil {
		return m.SetGatewayErr
	}
	o, ok := m.Orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Payment.GatewayOrderID = gatewayOrderID
	return nil
}

func (m *MockOrderRepository) SettlePayment(_ context.Context, orderID string, status domain.OrderStatus, payment domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SettleErr != nil {
		return m.SettleErr
	}
	o, ok := m.Orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != domain.OrderStatusPendingPayment {
		return repository.ErrStatusConflict
	}
	o.Status = status
	o.Payment.Status = payment.Status
	if payment.ID != "" {
		o.Payment.ID = payment.ID
	}
	if payment.Error != "" {
		o.Payment.Error = payment.Error
	}
	return nil
}

func (m *MockOrderRepository) UpdateStatus(_ context.Context, orderID string, from, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != from {
		return repository.ErrStatusConflict
	}
	o.Status = to
	return nil
}

func (m *MockOrderRepository) ListStalePending(_ context.Context, _ time.Duration) ([]domain.Order, error) {
	return nil, nil
}

func (m *MockOrderRepository) Only() *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Orders {
		order := *o
		return &order
	}
	return nil
}

// MockOutboxRepository implements repository.OutboxRepository for testing
type MockOutboxRepository struct {
	mu     sync.Mutex
	Events []*domain.OrderEvent
	AddErr error
}

func (m *MockOutboxRepository) AddEvent(_ context.Context, event *domain.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnprocessedEvents(_ context.Context, _ int64) ([]*domain.OrderEvent, error) {
	return m.Events, nil
}

func (m *MockOutboxRepository) MarkEventAsProcessed(_ context.Context, _ string) error {
	return nil
}

// MockTotalsCache implements cache.TotalsCache for testing
type MockTotalsCache struct {
	mu      sync.Mutex
	Hints   map[string]*cache.TotalsHint
	GetErr  error
	SetErr  error
	Deletes int
}

func (m *MockTotalsCache) Get(_ context.Context, userID string) (*cache.TotalsHint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	h, ok := m.Hints[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return h, nil
}

func (m *MockTotalsCache) Set(_ context.Context, userID string, hint *cache.TotalsHint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Hints == nil {
		m.Hints = make(map[string]*cache.TotalsHint)
	}
	m.Hints[userID] = hint
	return nil
}

func (m *MockTotalsCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	delete(m.Hints, userID)
	return nil
}

// MockGateway implements PaymentGateway; signatures are checked with Secret.
type MockGateway struct {
	Secret   string
	Err      error
	Requests []gateway.OrderRequest
}

func (m *MockGateway) CreateOrder(_ context.Context, req gateway.OrderRequest) (*gateway.RemoteOrder, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return &gateway.RemoteOrder{
		ID:       "order_gw_" + req.Receipt,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (m *MockGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return signature != "" && signature == gateway.Sign(m.Secret, gatewayOrderID, paymentID)
}

func (m *MockGateway) KeyID() string {
	return "rzp_test_key"
}
