package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"simpleshop/internal/config"
	"simpleshop/internal/model"

	"github.com/rs/zerolog"
)

// RazorpayClient implements Gateway against the Razorpay REST API.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewRazorpayClient creates a gateway client. Every call is bounded by cfg.Timeout.
func NewRazorpayClient(cfg config.PaymentConfig, logger zerolog.Logger) *RazorpayClient {
	return &RazorpayClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "razorpay").Logger(),
	}
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt,omitempty"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens a gateway order with automatic capture.
// Transport failures, timeouts and 5xx responses wrap model.ErrGatewayUnavailable;
// 4xx responses wrap model.ErrGatewayRejected.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:         amount,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode gateway order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("receipt", receipt).Msg("gateway request failed")
		return "", fmt.Errorf("%w: %w", model.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read gateway response: %w", model.ErrGatewayUnavailable, err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("receipt", receipt).
		Msg("gateway order call completed")

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Error().Int("status", resp.StatusCode).Msg("gateway server error")
		return "", fmt.Errorf("%w: status %d", model.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("code", e.Error.Code).
			Str("description", e.Error.Description).
			Msg("gateway rejected order")
		return "", fmt.Errorf("%w: %s", model.ErrGatewayRejected, e.Error.Description)
	}

	var out createOrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: failed to decode gateway response: %w", model.ErrGatewayUnavailable, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: gateway response without order id", model.ErrGatewayUnavailable)
	}

	return out.ID, nil
}

// VerifySignature checks the HMAC the gateway returned with a payment.
func (c *RazorpayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return verify(c.keySecret, gatewayOrderID, paymentID, signature)
}

// KeyID returns the public key id.
func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// IsUnavailable reports whether err came from an unreachable gateway.
func IsUnavailable(err error) bool {
	return errors.Is(err, model.ErrGatewayUnavailable)
}
