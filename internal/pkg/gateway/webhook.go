package gateway

import (
	"encoding/json"
	"errors"
	"strings"
)

// WebhookEvent is the normalized shape of a gateway notification. The gateway
// posts both the current format (type/action/data.id) and a legacy format
// (topic/resource); both are accepted.
type WebhookEvent struct {
	Type      string
	Action    string
	PaymentID string
}

// IsPaymentEvent reports whether the notification concerns a payment and
// should be reconciled. Everything else is acknowledged and ignored.
func (e *WebhookEvent) IsPaymentEvent() bool {
	return e.Type == "payment" && e.PaymentID != ""
}

// ParseWebhookEvent extracts the event kind and payment id from a raw
// notification body.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	type rawEvent struct {
		Type   string `json:"type"`
		Topic  string `json:"topic"`
		Action string `json:"action"`
		Data   struct {
			ID flexibleID `json:"id"`
		} `json:"data"`
		Resource string `json:"resource"`
	}

	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	out := &WebhookEvent{
		Type:      strings.ToLower(strings.TrimSpace(raw.Type)),
		Action:    strings.ToLower(strings.TrimSpace(raw.Action)),
		PaymentID: strings.TrimSpace(raw.Data.ID.String()),
	}
	if out.Type == "" {
		out.Type = strings.ToLower(strings.TrimSpace(raw.Topic))
	}
	// Legacy notifications carry the payment id as the tail of a resource URL.
	if out.PaymentID == "" && raw.Resource != "" {
		parts := strings.Split(strings.TrimRight(raw.Resource, "/"), "/")
		out.PaymentID = strings.TrimSpace(parts[len(parts)-1])
	}

	if out.Type == "" {
		return nil, errors.New("webhook payload missing event type")
	}
	return out, nil
}
