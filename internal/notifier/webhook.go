package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// webhookPayload is the JSON document posted to webhooks.
type webhookPayload struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
}

// Webhook posts notifications as JSON to an HTTP endpoint.
type Webhook struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewWebhook creates a Webhook notifier. Deadlines come from the context.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: http.DefaultClient,
		now:    time.Now,
	}
}

// Notify posts the message. Any status code of 400 or above is an error.
func (w *Webhook) Notify(ctx context.Context, severity Severity, message string) error {
	body, err := json.Marshal(webhookPayload{
		Severity: severity,
		Message:  message,
		SentAt:   w.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck // Nothing useful to do with the error.

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook %s returned HTTP %d", w.url, resp.StatusCode)
	}

	return nil
}
