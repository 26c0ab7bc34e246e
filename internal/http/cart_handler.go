package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/pricing"
)

type CartService interface {
	Aggregate(ctx context.Context, userID string) ([]domain.LineItem, error)
	AddItem(ctx context.Context, userID, productID, size string, quantity int) ([]domain.LineItem, error)
	UpdateQuantity(ctx context.Context, userID, entryID string, quantity int) ([]domain.LineItem, error)
	RemoveItem(ctx context.Context, userID, entryID string) ([]domain.LineItem, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	EntryID         string  `json:"entry_id"`
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name,omitempty"`
	Image           string  `json:"image,omitempty"`
	Size            string  `json:"size,omitempty"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	ListPrice       float64 `json:"list_price,omitempty"`
	DiscountPercent int     `json:"discount_percent,omitempty"`
	LineTotal       float64 `json:"line_total"`
	Unavailable     bool    `json:"unavailable,omitempty"`
}

type CartResponseDTO struct {
	Items     []CartItemDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Subtotal  float64       `json:"subtotal"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	items, err := h.carts.Aggregate(ctx, p.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(items))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	items, err := h.carts.AddItem(ctx, p.UserID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertCart(items))
}

// PUT /api/v1/cart/items/{entry_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	entryID := chi.URLParam(r, "entry_id")
	if entryID == "" {
		respondError(w, http.StatusBadRequest, "missing_entry_id", "entry_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	items, err := h.carts.UpdateQuantity(ctx, p.UserID, entryID, req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(items))
}

// DELETE /api/v1/cart/items/{entry_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	entryID := chi.URLParam(r, "entry_id")
	if entryID == "" {
		respondError(w, http.StatusBadRequest, "missing_entry_id", "entry_id is required")
		return
	}

	items, err := h.carts.RemoveItem(ctx, p.UserID, entryID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(items))
}

func convertCart(items []domain.LineItem) CartResponseDTO {
	dto := CartResponseDTO{Items: make([]CartItemDTO, 0, len(items))}
	for _, it := range items {
		item := CartItemDTO{
			EntryID:   it.Entry.ID,
			ProductID: it.Entry.ProductID,
			Size:      it.Entry.SelectedSize,
			Quantity:  it.Entry.Quantity,
		}
		if it.Product == nil {
			item.Unavailable = true
		} else {
			item.Name = it.Product.Name
			item.Image = it.Product.PrimaryImage()
			item.UnitPrice = it.UnitPrice()
			item.LineTotal = item.UnitPrice * float64(item.Quantity)
			if item.UnitPrice < it.Product.Price {
				item.ListPrice = it.Product.Price
				item.DiscountPercent = pricing.DiscountPercentage(it.Product.Price, item.UnitPrice)
			}
			dto.ItemCount += item.Quantity
		}
		dto.Items = append(dto.Items, item)
	}
	dto.Subtotal = pricing.Calculate(domain.ResolvedItems(items)).Subtotal
	return dto
}
