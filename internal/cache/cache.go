package cache

import (
	"context"
	"errors"

	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
)

// TotalsHint is the last totals shown to a user during checkout. It is a
// display hint only; orders are always priced from fresh data.
type TotalsHint struct {
	AddressID string        `json:"address_id"`
	Totals    domain.Totals `json:"totals"`
}

type TotalsCache interface {
	Get(ctx context.Context, userID string) (*TotalsHint, error)
	Set(ctx context.Context, userID string, hint *TotalsHint) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
