package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reliefops/relief-api/internal/config"
)

// Client delivers operational summaries to an external channel.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Message is the webhook payload.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifierConfig) *WebhookClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// apiError represents an error body returned by the webhook receiver.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Send posts msg to the webhook.
func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send digest webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("digest webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
