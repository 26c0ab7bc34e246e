package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/pricing"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"go.uber.org/zap"
)

// Identity is the authenticated customer driving a checkout.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

type CheckoutService struct {
	carts     *CartService
	addresses repository.AddressRepository
	cache     cache.TotalsCache
	logger    *zap.Logger
	timeout   time.Duration
}

func NewCheckoutService(carts *CartService, addresses repository.AddressRepository, totals cache.TotalsCache, logger *zap.Logger, timeout time.Duration) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		addresses: addresses,
		cache:     totals,
		logger:    logger,
		timeout:   timeout,
	}
}

// Begin starts a checkout for the user with their saved addresses loaded.
func (s *CheckoutService) Begin(ctx context.Context, id Identity) (*CheckoutSession, error) {
	if id.UserID == "" {
		return nil, ErrUserRequired
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	addresses, err := s.addresses.ListAddresses(ctx, id.UserID)
	if err != nil {
		return nil, storeError("list addresses", err)
	}

	return &CheckoutSession{
		svc:       s,
		identity:  id,
		addresses: addresses,
		state:     domain.CheckoutStateNoAddress,
	}, nil
}

// TotalsHint returns the totals last confirmed by the user.
func (s *CheckoutService) TotalsHint(ctx context.Context, userID string) (*cache.TotalsHint, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	hint, err := s.cache.Get(ctx, userID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNoTotalsHint
	}
	if err != nil {
		s.logger.Warn("totals hint read failed", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrNoTotalsHint
	}
	return hint, nil
}

// Quote runs a checkout up to confirmed totals for the given address.
func (s *CheckoutService) Quote(ctx context.Context, id Identity, addressID string) (domain.Totals, error) {
	session, err := s.Begin(ctx, id)
	if err != nil {
		return domain.Totals{}, err
	}
	if err := session.SelectAddress(addressID); err != nil {
		return domain.Totals{}, err
	}
	return session.ConfirmTotals(ctx)
}

// Prepare runs a whole checkout in one call and returns the draft to commit.
func (s *CheckoutService) Prepare(ctx context.Context, id Identity, addressID string, method domain.PaymentMethod) (domain.OrderDraft, error) {
	session, err := s.Begin(ctx, id)
	if err != nil {
		return domain.OrderDraft{}, err
	}
	if err := session.SelectAddress(addressID); err != nil {
		return domain.OrderDraft{}, err
	}
	if _, err := session.ConfirmTotals(ctx); err != nil {
		return domain.OrderDraft{}, err
	}
	if err := session.ChoosePaymentMethod(method); err != nil {
		return domain.OrderDraft{}, err
	}
	return session.Draft()
}

// CheckoutSession walks one checkout attempt from address selection to an
// order draft. Calls must follow the state order; a call made while another
// is running fails with ErrCheckoutInFlight.
type CheckoutSession struct {
	svc       *CheckoutService
	identity  Identity
	addresses []domain.Address
	inFlight  atomic.Bool

	state   domain.CheckoutState
	address *domain.Address
	items   []domain.LineItem
	totals  domain.Totals
	method  domain.PaymentMethod
}

func (c *CheckoutSession) State() domain.CheckoutState {
	return c.state
}

func (c *CheckoutSession) NeedsAddress() bool {
	return len(c.addresses) == 0
}

func (c *CheckoutSession) Addresses() []domain.Address {
	out := make([]domain.Address, len(c.addresses))
	copy(out, c.addresses)
	return out
}

func (c *CheckoutSession) acquire() error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrCheckoutInFlight
	}
	return nil
}

func (c *CheckoutSession) release() {
	c.inFlight.Store(false)
}

// SelectAddress picks one of the user's saved addresses. Choosing again
// discards confirmed totals and the payment method.
func (c *CheckoutSession) SelectAddress(addressID string) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	if c.state.IsTerminal() {
		return ErrIllegalTransition
	}
	if len(c.addresses) == 0 {
		return ErrNoAddresses
	}

	for i := range c.addresses {
		if c.addresses[i].ID == addressID {
			addr := c.addresses[i]
			c.address = &addr
			c.items = nil
			c.totals = domain.Totals{}
			c.method = ""
			c.state = domain.CheckoutStateAddressSelected
			return nil
		}
	}
	return ErrAddressNotFound
}

// ConfirmTotals prices the current cart. Entries with missing products are
// left out of the order.
func (c *CheckoutSession) ConfirmTotals(ctx context.Context) (domain.Totals, error) {
	if err := c.acquire(); err != nil {
		return domain.Totals{}, err
	}
	defer c.release()

	if c.state < domain.CheckoutStateAddressSelected || c.state.IsTerminal() {
		return domain.Totals{}, ErrIllegalTransition
	}

	items, err := c.svc.carts.Aggregate(ctx, c.identity.UserID)
	if err != nil {
		return domain.Totals{}, err
	}
	resolved := domain.ResolvedItems(items)
	if len(resolved) == 0 {
		return domain.Totals{}, ErrEmptyCart
	}

	totals := pricing.Calculate(resolved)

	hint := &cache.TotalsHint{AddressID: c.address.ID, Totals: totals}
	if err := c.svc.cache.Set(ctx, c.identity.UserID, hint); err != nil {
		c.svc.logger.Warn("totals hint write failed", zap.String("user_id", c.identity.UserID), zap.Error(err))
	}

	c.items = resolved
	c.totals = totals
	c.method = ""
	c.state = domain.CheckoutStateTotalsConfirmed
	return totals, nil
}

func (c *CheckoutSession) ChoosePaymentMethod(method domain.PaymentMethod) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	if !method.Valid() {
		return ErrInvalidPaymentMethod
	}
	if c.state != domain.CheckoutStateTotalsConfirmed && c.state != domain.CheckoutStatePaymentMethodChosen {
		return ErrIllegalTransition
	}
	if method == domain.PaymentMethodOnline && c.identity.Email == "" {
		return ErrMissingEmail
	}

	c.method = method
	c.state = domain.CheckoutStatePaymentMethodChosen
	return nil
}

// Draft moves the session to ready and returns the order draft. It can be
// called once.
func (c *CheckoutSession) Draft() (domain.OrderDraft, error) {
	if err := c.acquire(); err != nil {
		return domain.OrderDraft{}, err
	}
	defer c.release()

	if c.state != domain.CheckoutStatePaymentMethodChosen {
		return domain.OrderDraft{}, ErrIllegalTransition
	}

	items := make([]domain.LineItem, len(c.items))
	copy(items, c.items)

	c.state = domain.CheckoutStateReady
	return domain.OrderDraft{
		UserID:            c.identity.UserID,
		UserEmail:         c.identity.Email,
		UserName:          c.identity.Name,
		LineItems:         items,
		Address:           *c.address,
		Totals:            c.totals,
		PaymentMethod:     c.method,
		CommittedEntryIDs: domain.EntryIDs(items),
	}, nil
}
