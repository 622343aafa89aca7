// Package payments is a thin client for the Pago a Pago payment provider.
// The game credits coins when the provider's webhook later reports the
// order as paid; this package only creates orders.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

func New(baseURL, apiKey, callbackURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// OrderRequest is the payload sent to the provider. ExtraData carries the
// user id so the webhook can attribute the payment.
type OrderRequest struct {
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Motive      string    `json:"motive,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	DNI         string    `json:"dni,omitempty"`
	CallbackURL string    `json:"callback_url"`
	ExtraData   ExtraData `json:"extra_data"`
}

type ExtraData struct {
	UserID string `json:"user_id"`
}

// Order is the provider's response to a created order.
type Order struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

type orderEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    Order  `json:"data"`
}

// CreateOrder submits a payment order to the provider and returns the
// checkout details.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if req.Currency == "" {
		req.Currency = "VES"
	}
	req.CallbackURL = c.callbackURL

	body, err := json.Marshal(req)
	if err != nil {
		return Order{}, fmt.Errorf("encoding order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Order{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Order{}, fmt.Errorf("calling provider: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Order{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Order{}, fmt.Errorf("provider returned %d: %s", resp.StatusCode, data)
	}

	var env orderEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Order{}, fmt.Errorf("decoding response: %w", err)
	}
	if env.Data.OrderID != "" {
		return env.Data, nil
	}

	// Some provider responses are flat rather than enveloped.
	var order Order
	if err := json.Unmarshal(data, &order); err != nil {
		return Order{}, fmt.Errorf("decoding response: %w", err)
	}
	return order, nil
}
