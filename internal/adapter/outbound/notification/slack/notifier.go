package slack

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	slackapi "github.com/slack-go/slack"

	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

// Config holds Slack incoming-webhook configuration.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

// Notifier implements outbound.Notifier via a Slack incoming webhook.
type Notifier struct {
	config     Config
	httpClient *http.Client
}

var _ outbound.Notifier = (*Notifier)(nil)

// NewNotifier creates a new Slack Notifier.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (n *Notifier) Platform() string { return "slack" }

// Send posts msg as Block Kit. The plain text is kept as the notification
// fallback.
func (n *Notifier) Send(ctx context.Context, msg outbound.Message) error {
	wm := &slackapi.WebhookMessage{
		Text:   msg.Text,
		Blocks: &slackapi.Blocks{BlockSet: BuildMessageBlocks(msg)},
	}
	if err := slackapi.PostWebhookCustomHTTPContext(ctx, n.config.WebhookURL, n.httpClient, wm); err != nil {
		return errors.Wrap(err, "slack webhook")
	}
	return nil
}
