package gateway

import "testing"

func TestParseWebhookEvent(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantType  string
		wantID    string
		isPayment bool
	}{
		{
			name:      "current format",
			payload:   `{"type":"payment","action":"payment.updated","data":{"id":"12345"}}`,
			wantType:  "payment",
			wantID:    "12345",
			isPayment: true,
		},
		{
			name:      "numeric data id",
			payload:   `{"type":"payment","data":{"id":12345}}`,
			wantType:  "payment",
			wantID:    "12345",
			isPayment: true,
		},
		{
			name:      "alphanumeric data id",
			payload:   `{"type":"payment","data":{"id":"PAY123"}}`,
			wantType:  "payment",
			wantID:    "PAY123",
			isPayment: true,
		},
		{
			name:      "legacy topic and resource",
			payload:   `{"topic":"payment","resource":"https://api.example.com/v1/payments/98765"}`,
			wantType:  "payment",
			wantID:    "98765",
			isPayment: true,
		},
		{
			name:      "non payment event",
			payload:   `{"type":"merchant_order","data":{"id":"555"}}`,
			wantType:  "merchant_order",
			wantID:    "555",
			isPayment: false,
		},
		{
			name:      "payment type without id",
			payload:   `{"type":"payment"}`,
			wantType:  "payment",
			wantID:    "",
			isPayment: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := ParseWebhookEvent([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseWebhookEvent() error = %v", err)
			}
			if event.Type != tt.wantType {
				t.Fatalf("Type = %q, want %q", event.Type, tt.wantType)
			}
			if event.PaymentID != tt.wantID {
				t.Fatalf("PaymentID = %q, want %q", event.PaymentID, tt.wantID)
			}
			if event.IsPaymentEvent() != tt.isPayment {
				t.Fatalf("IsPaymentEvent() = %v, want %v", event.IsPaymentEvent(), tt.isPayment)
			}
		})
	}
}

func TestParseWebhookEvent_Invalid(t *testing.T) {
	if _, err := ParseWebhookEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	if _, err := ParseWebhookEvent([]byte(`{"data":{"id":"1"}}`)); err == nil {
		t.Fatalf("expected error for payload without event type")
	}
}
