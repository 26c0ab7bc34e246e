package service

import (
	"context"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/gateway"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
)

// PaymentGateway creates remote orders and verifies client-reported payments.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.RemoteOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
}

type ProductHandler struct {
	products repository.ProductRepository
	timeout  time.Duration
}

func NewProductHandler(products repository.ProductRepository, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

func (h *ProductHandler) get(ctx context.Context, productID string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.products.GetProduct(ctx, productID)
}

type PaymentHandler struct {
	gateway  PaymentGateway
	currency string
	timeout  time.Duration
}

func NewPaymentHandler(gw PaymentGateway, currency string, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		gateway:  gw,
		currency: currency,
		timeout:  timeout,
	}
}

func (h *PaymentHandler) createOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.RemoteOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.gateway.CreateOrder(ctx, req)
}
