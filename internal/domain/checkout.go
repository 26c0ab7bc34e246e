package domain

// CheckoutState is the progress of a single checkout attempt.
type CheckoutState int

const (
	CheckoutStateNoAddress CheckoutState = iota
	CheckoutStateAddressSelected
	CheckoutStateTotalsConfirmed
	CheckoutStatePaymentMethodChosen
	CheckoutStateReady
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutStateNoAddress:
		return "NO_ADDRESS"
	case CheckoutStateAddressSelected:
		return "ADDRESS_SELECTED"
	case CheckoutStateTotalsConfirmed:
		return "TOTALS_CONFIRMED"
	case CheckoutStatePaymentMethodChosen:
		return "PAYMENT_METHOD_CHOSEN"
	case CheckoutStateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateReady
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// OrderDraft is everything needed to commit an order. It is produced once a
// checkout reaches the ready state and is not modified afterwards.
type OrderDraft struct {
	UserID        string
	UserEmail     string
	UserName      string
	LineItems     []LineItem
	Address       Address
	Totals        Totals
	PaymentMethod PaymentMethod
	// Cart entry ids present when totals were confirmed. Only these are
	// removed from the cart after commit.
	CommittedEntryIDs []string
}
