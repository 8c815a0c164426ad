package slackbot

import (
	"context"
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/lockwatch/internal/adapter/inbound/webhook"
	"github.com/jonny/lockwatch/internal/domain/model"
)

// handleInteraction routes a lock button click to the InteractionPort and
// posts the ephemeral acknowledgement to the callback's response_url.
func (b *Bot) handleInteraction(ctx context.Context, callback slackapi.InteractionCallback) {
	event := webhook.SlackEvent(&callback)
	ack := b.interactions.HandleInteraction(ctx, event)
	if ack.Kind != model.AckEphemeral || callback.ResponseURL == "" {
		return
	}

	msg := &slackapi.WebhookMessage{Text: ack.Text, ResponseType: "ephemeral"}
	if err := slackapi.PostWebhookCustomHTTPContext(ctx, callback.ResponseURL, b.httpClient, msg); err != nil {
		b.logger.Warn("slack socket mode: posting acknowledgement failed", "error", err)
	}
}

// slashResponse answers the /lockwatch slash command.
func (b *Bot) slashResponse(text string) string {
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "status":
		return fmt.Sprintf(":lock: *lockwatch* is running and watching %d device(s).", b.cfg.Devices)
	case "", "help":
		return buildHelpText()
	default:
		sanitized := text
		if len(sanitized) > 100 {
			sanitized = sanitized[:100]
		}
		sanitized = strings.ReplaceAll(sanitized, "`", "'")
		return fmt.Sprintf(":question: Unknown command `%s`. Try `/lockwatch help`.", sanitized)
	}
}

// buildHelpText returns the help message for the /lockwatch slash command.
func buildHelpText() string {
	return strings.Join([]string{
		":lock: *lockwatch commands*",
		"",
		"• `/lockwatch status`: show what is being watched",
		"• `/lockwatch help`: show this message",
		"",
		"Use the Lock button on an unlock notification to lock that device.",
	}, "\n")
}
