package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"github.com/jonny/lockwatch/internal/domain/port/outbound"
	"github.com/jonny/lockwatch/pkg/apierror"
)

// maxLabelRunes is Discord's limit for button labels.
const maxLabelRunes = 80

// Config holds Discord webhook configuration.
type Config struct {
	WebhookURL string
	Username   string
	Timeout    time.Duration
}

// Notifier implements outbound.Notifier via a Discord incoming webhook.
type Notifier struct {
	config     Config
	httpClient *http.Client
}

var _ outbound.Notifier = (*Notifier)(nil)

// NewNotifier creates a new Discord Notifier.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (n *Notifier) Platform() string { return "discord" }

// Send posts msg to the webhook, attaching one button when msg carries a control.
func (n *Notifier) Send(ctx context.Context, msg outbound.Message) error {
	params := BuildWebhookParams(msg)
	params.Username = n.config.Username

	encoded, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "encoding discord webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(encoded))
	if err != nil {
		return errors.Wrap(err, "creating discord webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling discord webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apierror.WithDetail(resp.StatusCode, "discord webhook rejected message", string(body))
	}
	return nil
}

// BuildWebhookParams lays msg out as a Discord webhook body: the text as
// content and, when present, one action row holding one secondary button.
func BuildWebhookParams(msg outbound.Message) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{
		Content:    msg.Text,
		Components: []discordgo.MessageComponent{},
	}
	if msg.Control == nil {
		return params
	}
	params.Components = []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    truncateLabel(msg.Control.Label),
					Style:    discordgo.SecondaryButton,
					CustomID: msg.Control.ID,
				},
			},
		},
	}
	return params
}

func truncateLabel(label string) string {
	r := []rune(label)
	if len(r) <= maxLabelRunes {
		return label
	}
	return string(r[:maxLabelRunes-1]) + "…"
}
