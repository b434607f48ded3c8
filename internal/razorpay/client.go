package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

const upstreamName = "razorpay"

// Client is a thin adapter over the gateway's REST API. Every call is
// bounded by the HTTP client timeout; failures surface as
// ports.UpstreamError and are never retried here.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewClient builds a gateway client authenticated with the API key pair.
func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type gatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type gatewayPayment struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorDescription string `json:"error_description"`
}

type gatewayRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent mints a remote payment intent (a gateway-side order) for
// the given receipt and amount in minor units.
func (c *Client) CreateIntent(ctx context.Context, receipt string, amountMinor int64, currency string) (*ports.PaymentIntent, error) {
	payload := map[string]any{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	var out gatewayOrder
	if err := c.do(ctx, http.MethodPost, "/v1/orders", payload, &out); err != nil {
		return nil, err
	}

	return &ports.PaymentIntent{
		ID:          out.ID,
		AmountMinor: out.Amount,
		Currency:    out.Currency,
	}, nil
}

// FetchPayment reads the authoritative payment record from the gateway.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*ports.GatewayPayment, error) {
	var out gatewayPayment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &out); err != nil {
		return nil, err
	}

	return &ports.GatewayPayment{
		ID:          out.ID,
		OrderID:     out.OrderID,
		Status:      out.Status,
		Method:      out.Method,
		AmountMinor: out.Amount,
	}, nil
}

// CreateRefund issues a refund against a captured payment.
func (c *Client) CreateRefund(ctx context.Context, paymentID string, amountMinor int64) (*ports.GatewayRefund, error) {
	payload := map[string]any{"amount": amountMinor}

	var out gatewayRefund
	if err := c.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refund", payload, &out); err != nil {
		return nil, err
	}

	return &ports.GatewayRefund{
		ID:          out.ID,
		Status:      out.Status,
		AmountMinor: out.Amount,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.Upstream(upstreamName, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ports.Upstream(upstreamName, fmt.Errorf("read %s %s response: %w", method, path, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr gatewayError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return ports.Upstream(upstreamName, fmt.Errorf("%s %s: %s (%s)", method, path, apiErr.Error.Description, apiErr.Error.Code))
		}
		return ports.Upstream(upstreamName, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return ports.Upstream(upstreamName, fmt.Errorf("decode %s %s response: %w", method, path, err))
		}
	}

	return nil
}
