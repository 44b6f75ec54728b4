package alert

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Slack delivers alerts through an incoming-webhook URL.
type Slack struct {
	webhookURL string
}

// NewSlack creates a Slack notifier.
func NewSlack(webhookURL string) (*Slack, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("alert: slack: webhook URL is required")
	}
	return &Slack{webhookURL: webhookURL}, nil
}

// Notify implements Notifier.
func (s *Slack) Notify(ctx context.Context, title, body string) error {
	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("*%s*\n%s", title, body),
	}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("alert: slack: %w", err)
	}
	return nil
}
