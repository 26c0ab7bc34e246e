package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sathiya272004/my-ecommerce-app/internal/service"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

type errorMapping struct {
	target error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{service.ErrUserRequired, http.StatusUnauthorized, "unauthorized"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{service.ErrSizeRequired, http.StatusBadRequest, "size_required"},
	{service.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
	{service.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{service.ErrCartEntryNotFound, http.StatusNotFound, "cart_entry_not_found"},
	{service.ErrNoAddresses, http.StatusUnprocessableEntity, "no_addresses"},
	{service.ErrAddressNotFound, http.StatusNotFound, "address_not_found"},
	{service.ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
	{service.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart"},
	{service.ErrMissingEmail, http.StatusUnprocessableEntity, "missing_email"},
	{service.ErrInvalidPaymentMethod, http.StatusBadRequest, "invalid_payment_method"},
	{service.ErrInvalidPaymentOutcome, http.StatusBadRequest, "invalid_payment_outcome"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{service.ErrStoreUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	{service.ErrPaymentUncertain, http.StatusAccepted, "payment_uncertain"},
	{service.ErrCheckoutInFlight, http.StatusConflict, "checkout_in_progress"},
	{service.ErrPaymentFailed, http.StatusPaymentRequired, "payment_failed"},
	{service.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
	{service.ErrOrderNotPending, http.StatusConflict, "order_not_pending"},
	{service.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{service.ErrNoTotalsHint, http.StatusNotFound, "no_totals"},
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			respondJSON(w, m.status, ErrorResponse{
				Error:   m.target.Error(),
				Code:    m.code,
				Details: details(err, m.target),
			})
			return
		}
	}
	zap.L().Error("unmapped service error",
		zap.String("request_id", getRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// details carries the wrapped message, which names the failing field or
// order. Store failures keep the underlying cause out of the response.
func details(err, target error) string {
	if target == service.ErrStoreUnavailable || err.Error() == target.Error() {
		return ""
	}
	return err.Error()
}
