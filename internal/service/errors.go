package service

import (
	"errors"
	"fmt"
)

// validation
var (
	ErrUserRequired          = errors.New("user id is required")
	ErrInvalidQuantity       = errors.New("quantity must be between 1 and 99")
	ErrSizeRequired          = errors.New("size must be selected")
	ErrOutOfStock            = errors.New("selected size is out of stock")
	ErrProductNotFound       = errors.New("product not found")
	ErrCartEntryNotFound     = errors.New("cart entry not found")
	ErrNoAddresses           = errors.New("no saved addresses, add an address first")
	ErrAddressNotFound       = errors.New("address not found")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrMissingEmail          = errors.New("email is required for online payment")
	ErrInvalidPaymentMethod  = errors.New("payment method must be online or cod")
	ErrInvalidPaymentOutcome = errors.New("payment outcome must be succeeded, failed or cancelled")
	ErrInvalidStatus         = errors.New("unknown order status")
)

// transient
var (
	ErrStoreUnavailable = errors.New("store unavailable, try again")
	ErrPaymentUncertain = errors.New("payment status uncertain, check order history")
	ErrCheckoutInFlight = errors.New("checkout already in progress")
)

// declined
var ErrPaymentFailed = errors.New("payment failed")

// state
var (
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
	ErrOrderNotPending   = errors.New("order is not awaiting payment")
	ErrOrderNotFound     = errors.New("order not found")
	ErrNoTotalsHint      = errors.New("no totals computed for this checkout")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
