package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// defaultPushTimeout bounds one response_url delivery.
const defaultPushTimeout = 10 * time.Second

// WebhookTransport posts deferred replies to Slack response URLs.
// It satisfies interaction.Transport.
type WebhookTransport struct {
	client *http.Client
}

// NewWebhookTransport creates a WebhookTransport. A nil client gets one with
// a 10 second timeout.
func NewWebhookTransport(client *http.Client) *WebhookTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultPushTimeout}
	}
	return &WebhookTransport{client: client}
}

// Push renders r and posts it to responseURL.
func (t *WebhookTransport) Push(ctx context.Context, responseURL string, r render.Result) error {
	msg, err := render.Webhook(r)
	if err != nil {
		return fmt.Errorf("rendering push: %w", err)
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, responseURL, t.client, msg); err != nil {
		return fmt.Errorf("posting to response url: %w", err)
	}
	return nil
}
