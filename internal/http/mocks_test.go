package http

import (
	"context"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/service"
)

type MockCartService struct {
	Items      []domain.LineItem
	Err        error
	LastUser   string
	LastEntry  string
	LastQty    int
	LastSize   string
	LastProdID string
}

func (m *MockCartService) Aggregate(_ context.Context, userID string) ([]domain.LineItem, error) {
	m.LastUser = userID
	return m.Items, m.Err
}

func (m *MockCartService) AddItem(_ context.Context, userID, productID, size string, quantity int) ([]domain.LineItem, error) {
	m.LastUser, m.LastProdID, m.LastSize, m.LastQty = userID, productID, size, quantity
	return m.Items, m.Err
}

func (m *MockCartService) UpdateQuantity(_ context.Context, userID, entryID string, quantity int) ([]domain.LineItem, error) {
	m.LastUser, m.LastEntry, m.LastQty = userID, entryID, quantity
	return m.Items, m.Err
}

func (m *MockCartService) RemoveItem(_ context.Context, userID, entryID string) ([]domain.LineItem, error) {
	m.LastUser, m.LastEntry = userID, entryID
	return m.Items, m.Err
}

type MockAddressService struct {
	Addresses []domain.Address
	Created   *domain.Address
	Err       error
	LastInput service.AddressInput
}

func (m *MockAddressService) List(_ context.Context, _ string) ([]domain.Address, error) {
	return m.Addresses, m.Err
}

func (m *MockAddressService) Get(_ context.Context, userID, addressID string) (*domain.Address, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, a := range m.Addresses {
		if a.ID == addressID && a.UserID == userID {
			addr := a
			return &addr, nil
		}
	}
	return nil, service.ErrAddressNotFound
}

func (m *MockAddressService) Create(_ context.Context, _ string, in service.AddressInput) (*domain.Address, error) {
	m.LastInput = in
	return m.Created, m.Err
}

type MockCheckoutService struct {
	Totals     domain.Totals
	Draft      domain.OrderDraft
	Hint       *cache.TotalsHint
	Err        error
	LastID     service.Identity
	LastMethod domain.PaymentMethod
}

func (m *MockCheckoutService) Quote(_ context.Context, id service.Identity, _ string) (domain.Totals, error) {
	m.LastID = id
	return m.Totals, m.Err
}

func (m *MockCheckoutService) Prepare(_ context.Context, id service.Identity, _ string, method domain.PaymentMethod) (domain.OrderDraft, error) {
	m.LastID, m.LastMethod = id, method
	return m.Draft, m.Err
}

func (m *MockCheckoutService) TotalsHint(_ context.Context, _ string) (*cache.TotalsHint, error) {
	if m.Hint == nil {
		return nil, service.ErrNoTotalsHint
	}
	return m.Hint, nil
}

type MockOrdersService struct {
	Result      *service.Result
	Order       *domain.Order
	Orders      []domain.Order
	Err         error
	LastOutcome service.PaymentOutcome
	LastStatus  domain.OrderStatus
	LastDraft   domain.OrderDraft
}

func (m *MockOrdersService) PlaceOrder(_ context.Context, draft domain.OrderDraft) (*service.Result, error) {
	m.LastDraft = draft
	return m.Result, m.Err
}

func (m *MockOrdersService) Settle(_ context.Context, _, _ string, outcome service.PaymentOutcome) (*service.Result, error) {
	m.LastOutcome = outcome
	return m.Result, m.Err
}

func (m *MockOrdersService) ListOrders(_ context.Context, _ string) ([]domain.Order, error) {
	return m.Orders, m.Err
}

func (m *MockOrdersService) GetOrder(_ context.Context, _, _ string) (*domain.Order, error) {
	return m.Order, m.Err
}

func (m *MockOrdersService) ListAllOrders(_ context.Context) ([]domain.Order, error) {
	return m.Orders, m.Err
}

func (m *MockOrdersService) UpdateStatus(_ context.Context, _ string, to domain.OrderStatus) (*domain.Order, error) {
	m.LastStatus = to
	return m.Order, m.Err
}
