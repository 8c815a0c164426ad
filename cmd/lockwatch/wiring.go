package main

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jonny/lockwatch/internal/adapter/inbound/slackbot"
	"github.com/jonny/lockwatch/internal/adapter/inbound/webhook"
	"github.com/jonny/lockwatch/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/lockwatch/internal/adapter/outbound/notification"
	"github.com/jonny/lockwatch/internal/adapter/outbound/notification/discord"
	"github.com/jonny/lockwatch/internal/adapter/outbound/notification/slack"
	"github.com/jonny/lockwatch/internal/adapter/outbound/sesame"
	"github.com/jonny/lockwatch/internal/config"
	"github.com/jonny/lockwatch/internal/domain/port/outbound"
	"github.com/jonny/lockwatch/internal/domain/service"
	"github.com/jonny/lockwatch/pkg/health"
	"github.com/jonny/lockwatch/pkg/version"
)

// buildLogger constructs a slog.Logger based on config.
func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newSesameClient(cfg *config.Config) *sesame.Client {
	return sesame.NewClient(sesame.Config{
		BaseURL:     cfg.Sesame.BaseURL,
		APIKey:      cfg.Sesame.APIKey,
		Timeout:     cfg.Sesame.Timeout,
		HistoryNote: cfg.Sesame.HistoryNote,
		UserAgent:   version.UserAgent(),
	})
}

func newNotifier(cfg *config.Config, logger *slog.Logger) outbound.Notifier {
	switch cfg.Notify.Platform {
	case config.PlatformSlack:
		return slack.NewNotifier(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Timeout:    cfg.Notify.Timeout,
		})
	case config.PlatformLog:
		return notification.NewNoopNotifier(logger)
	default:
		return discord.NewNotifier(discord.Config{
			WebhookURL: cfg.Discord.WebhookURL,
			Username:   cfg.Discord.Username,
			Timeout:    cfg.Notify.Timeout,
		})
	}
}

func newMonitor(cfg *config.Config, logger *slog.Logger) *service.Monitor {
	return service.NewMonitor(
		newSesameClient(cfg),
		service.NewDispatcher(newNotifier(cfg, logger), logger),
		service.NewPacer(cfg.Sesame.RequestInterval),
		logger,
	)
}

// startInteractionReceivers runs the HTTP interaction server in g and, when
// a Slack app token is configured, the Socket Mode bot next to it.
func startInteractionReceivers(ctx context.Context, g *errgroup.Group, cfg *config.Config, logger *slog.Logger) error {
	client := newSesameClient(cfg)
	if !client.HasCredential() {
		logger.Warn("no device api credential configured; lock requests will be dropped")
	}
	interactions := service.NewInteractionService(client, cfg.Sesame.CommandTimeout, logger)

	srv, err := newInteractionServer(cfg, client, interactions, logger)
	if err != nil {
		return err
	}
	g.Go(func() error {
		return srv.Start(ctx)
	})

	if cfg.Slack.AppToken != "" {
		bot := slackbot.NewBot(slackbot.Config{
			BotToken: cfg.Slack.BotToken,
			AppToken: cfg.Slack.AppToken,
			Devices:  len(cfg.Devices()),
		}, interactions, logger)
		g.Go(func() error {
			return bot.Start(ctx)
		})
	} else {
		logger.Info("slack socket mode disabled: no app token configured")
	}
	return nil
}

func newInteractionServer(cfg *config.Config, client *sesame.Client, interactions *service.InteractionService, logger *slog.Logger) (*webhook.Server, error) {
	checker := health.NewChecker(version.Version)
	checker.Require("sesame-credential", client.HasCredential, config.EnvAPIKey+" not configured")

	serverCfg := webhook.ServerConfig{
		Port:               cfg.Server.Port,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		ShutdownTimeout:    cfg.Server.ShutdownTimeout,
		SlackSigningSecret: cfg.Slack.SigningSecret,
	}
	if cfg.Server.RateLimit.Enabled {
		serverCfg.RateLimitPerMinute = cfg.Server.RateLimit.RequestsPerMinute
	}
	if cfg.Discord.PublicKey != "" {
		key, err := middleware.ParseDiscordPublicKey(cfg.Discord.PublicKey)
		if err != nil {
			return nil, err
		}
		serverCfg.DiscordPublicKey = key
	}

	return webhook.NewServer(serverCfg, interactions, checker, logger), nil
}
