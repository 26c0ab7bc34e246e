package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/service"
)

type CheckoutService interface {
	Quote(ctx context.Context, id service.Identity, addressID string) (domain.Totals, error)
	Prepare(ctx context.Context, id service.Identity, addressID string, method domain.PaymentMethod) (domain.OrderDraft, error)
	TotalsHint(ctx context.Context, userID string) (*cache.TotalsHint, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, draft domain.OrderDraft) (*service.Result, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	orders   OrderPlacer
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, orders OrderPlacer, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		orders:   orders,
		timeout:  timeout,
	}
}

type QuoteRequestDTO struct {
	AddressID string `json:"address_id"`
}

type QuoteResponseDTO struct {
	AddressID string        `json:"address_id"`
	Totals    domain.Totals `json:"totals"`
}

type CheckoutRequestDTO struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

type CheckoutResponseDTO struct {
	Order     *domain.Order    `json:"order"`
	StaleCart bool             `json:"stale_cart,omitempty"`
	Payment   *service.Handoff `json:"payment,omitempty"`
}

// POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req QuoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	totals, err := h.checkout.Quote(ctx, p.Identity(), req.AddressID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, QuoteResponseDTO{AddressID: req.AddressID, Totals: totals})
}

// GET /api/v1/checkout/quote
func (h *CheckoutHandler) LastQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	hint, err := h.checkout.TotalsHint(ctx, p.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, QuoteResponseDTO{AddressID: hint.AddressID, Totals: hint.Totals})
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	draft, err := h.checkout.Prepare(ctx, p.Identity(), req.AddressID, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.orders.PlaceOrder(ctx, draft)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Order:     result.Order,
		StaleCart: result.StaleCart,
		Payment:   result.Handoff,
	})
}
