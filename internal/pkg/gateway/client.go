package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuelReschke/BillFox/internal/pkg/env"
)

const defaultGatewayAPIBaseURL = "https://api.mercadopago.com"

// Payment status values as reported by the gateway.
const (
	PaymentStatusApproved  = "approved"
	PaymentStatusPending   = "pending"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

// ErrPaymentNotFound is returned when the gateway answers with a client error
// for a payment id. With tenant-scoped tokens this is the expected outcome
// when the credential does not own the payment.
var ErrPaymentNotFound = errors.New("gateway: payment not found for credential")

// Payment is the detail the gateway returns for a payment id.
type Payment struct {
	ID                string    `json:"id"`
	Status            string    `json:"status"`
	TransactionAmount float64   `json:"transaction_amount"`
	ExternalReference string    `json:"external_reference"`
	PaymentMethodID   string    `json:"payment_method_id"`
	DateApproved      time.Time `json:"date_approved"`
}

// IsApproved reports whether the payment reached final success.
func (p *Payment) IsApproved() bool {
	return strings.EqualFold(strings.TrimSpace(p.Status), PaymentStatusApproved)
}

// Client talks to the payment gateway REST API. Credentials are passed per
// call because a single client serves every tenant's token.
type Client struct {
	APIBaseURL string
	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimSpace(env.GetEnv("GATEWAY_API_BASE_URL", defaultGatewayAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchPayment loads a payment by id using the given bearer token. A 4xx
// answer maps to ErrPaymentNotFound; transport and 5xx failures are real
// errors.
func (c *Client) FetchPayment(ctx context.Context, paymentID, accessToken string) (*Payment, error) {
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, errors.New("payment id is required")
	}
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/v1/payments/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: status=%d", ErrPaymentNotFound, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway payment request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	type rawPayment struct {
		ID                flexibleID `json:"id"`
		Status            string     `json:"status"`
		TransactionAmount float64    `json:"transaction_amount"`
		ExternalReference string     `json:"external_reference"`
		PaymentMethodID   string     `json:"payment_method_id"`
		DateApproved      string     `json:"date_approved"`
	}
	var raw rawPayment
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("gateway payment response malformed: %w", err)
	}
	if strings.TrimSpace(raw.ID.String()) == "" {
		return nil, errors.New("gateway payment response missing id")
	}

	out := &Payment{
		ID:                raw.ID.String(),
		Status:            strings.ToLower(strings.TrimSpace(raw.Status)),
		TransactionAmount: raw.TransactionAmount,
		ExternalReference: strings.TrimSpace(raw.ExternalReference),
		PaymentMethodID:   strings.TrimSpace(raw.PaymentMethodID),
	}
	if ts := strings.TrimSpace(raw.DateApproved); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			out.DateApproved = t
		}
	}
	return out, nil
}
