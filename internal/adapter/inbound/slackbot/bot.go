package slackbot

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/jonny/lockwatch/internal/domain/port/inbound"
)

// Config holds Slack Socket Mode configuration.
type Config struct {
	BotToken string
	AppToken string
	// Devices is reported by the status slash command.
	Devices int
}

// Bot receives Slack interactions over Socket Mode, so no public request
// URL is needed.
type Bot struct {
	cfg          Config
	socketMode   *socketmode.Client
	interactions inbound.InteractionPort
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewBot creates a new Bot with Socket Mode enabled.
func NewBot(cfg Config, interactions inbound.InteractionPort, logger *slog.Logger) *Bot {
	client := slackapi.New(cfg.BotToken, slackapi.OptionAppLevelToken(cfg.AppToken))
	return &Bot{
		cfg:          cfg,
		socketMode:   socketmode.New(client),
		interactions: interactions,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		logger:       logger,
	}
}

// Start begins processing Slack events. It blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	go b.handleEvents(ctx)
	b.logger.Info("slack socket mode connecting")
	return b.socketMode.RunContext(ctx)
}

// handleEvents dispatches incoming Socket Mode events to the appropriate handler.
func (b *Bot) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socketMode.Events:
			if !ok {
				return
			}
			switch evt.Type {
			case socketmode.EventTypeInteractive:
				b.socketMode.Ack(*evt.Request)
				if callback, ok := evt.Data.(slackapi.InteractionCallback); ok {
					b.handleInteraction(ctx, callback)
				}
			case socketmode.EventTypeSlashCommand:
				cmd, _ := evt.Data.(slackapi.SlashCommand)
				b.socketMode.Ack(*evt.Request, map[string]string{
					"text": b.slashResponse(cmd.Text),
				})
			case socketmode.EventTypeConnected:
				b.logger.Info("slack socket mode connected")
			case socketmode.EventTypeConnectionError:
				b.logger.Warn("slack socket mode connection error")
			default:
				if evt.Request != nil {
					b.socketMode.Ack(*evt.Request)
				}
			}
		}
	}
}
