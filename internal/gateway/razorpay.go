package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var (
	// ErrGatewayUnreachable means the request may or may not have reached
	// the gateway. The remote order state is unknown.
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
	// ErrGatewayUnavailable means the request was never sent.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// APIError is a definitive rejection returned by the gateway.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay error %d %s: %s", e.StatusCode, e.Code, e.Description)
}

type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type RazorpayClient struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[*RemoteOrder]
	logger    *zap.Logger
}

func NewRazorpayClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *RazorpayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &RazorpayClient{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      httpClient,
		breaker:   circuitbreaker.New[*RemoteOrder](circuitbreaker.DefaultConfig("razorpay"), logger, breakerSuccess),
		logger:    logger,
	}
}

func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// CreateOrder registers an order with the gateway. Errors are one of
// *APIError, ErrGatewayUnreachable or ErrGatewayUnavailable.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error) {
	order, err := c.breaker.Execute(func() (*RemoteOrder, error) {
		return c.createOrder(ctx, req)
	})
	if circuitbreaker.IsOpen(err) {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if errors.Is(err, ErrGatewayUnreachable) {
		c.logger.Warn("razorpay create order outcome unknown",
			zap.String("receipt", req.Receipt),
			zap.Error(err),
		)
	}
	return order, err
}

func (c *RazorpayClient) createOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGatewayUnreachable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnreachable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}

	var order RemoteOrder
	if err := json.Unmarshal(data, &order); err != nil || order.ID == "" {
		return nil, fmt.Errorf("%w: malformed order response", ErrGatewayUnreachable)
	}
	return &order, nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var envelope struct {
		Error APIError `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(data, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Description = envelope.Error.Description
	}
	if apiErr.Code == "" {
		apiErr.Code = http.StatusText(status)
	}
	return apiErr
}

// VerifySignature checks the signature the checkout returns on success:
// hex(HMAC-SHA256(gatewayOrderID + "|" + paymentID, keySecret)).
func (c *RazorpayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Sign(c.keySecret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Client-side rejections say nothing about gateway health.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode < 500
}
