package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Cart      *CartHandler
	Addresses *AddressHandler
	Checkout  *CheckoutHandler
	Orders    *OrdersHandler
}

// NewRouter mounts the storefront API under /api/v1. Every API route needs a
// bearer token; /admin routes also need the admin role.
func NewRouter(h Handlers, jwtSecret []byte, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{entry_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{entry_id}", h.Cart.RemoveItem)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.Addresses.ListAddresses)
			r.Post("/", h.Addresses.CreateAddress)
			r.Get("/{address_id}", h.Addresses.GetAddress)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout.PlaceOrder)
			r.Get("/quote", h.Checkout.LastQuote)
			r.Post("/quote", h.Checkout.Quote)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{order_id}", h.Orders.GetOrder)
			r.Post("/{order_id}/payment", h.Orders.SettlePayment)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/orders", h.Orders.ListAllOrders)
			r.Patch("/orders/{order_id}/status", h.Orders.UpdateStatus)
		})
	})

	return r
}
