package messenger

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

	"github.com/ManuelReschke/BillFox/internal/pkg/env"
)

const defaultMessengerAPIBaseURL = "http://localhost:8080"

// Client talks to the messaging gateway. Each tenant runs its own gateway
// instance identified by an instance id and api key, passed per call.
type Client struct {
	APIBaseURL string
	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(env.GetEnv("MESSENGER_API_BASE_URL", defaultMessengerAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendText delivers a text message to a phone number through the tenant's
// gateway instance. A non-2xx answer returns the raw response body as the
// error text so operators see the gateway's own diagnosis.
func (c *Client) SendText(ctx context.Context, instanceID, apiKey, number, text string) error {
	if strings.TrimSpace(instanceID) == "" || strings.TrimSpace(apiKey) == "" {
		return errors.New("messenger instance id and api key are required")
	}
	if strings.TrimSpace(number) == "" {
		return errors.New("destination number is required")
	}

	payload, err := json.Marshal(sendTextRequest{Number: strings.TrimSpace(number), Text: text})
	if err != nil {
		return err
	}

	url := c.APIBaseURL + "/message/sendText/" + instanceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("messenger send failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
