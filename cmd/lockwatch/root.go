package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonny/lockwatch/internal/config"
	"github.com/jonny/lockwatch/internal/domain/service"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "lockwatch",
		Short:         "Notify chat when a smart lock is left unlocked, and lock it from a button",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to .env file (default ./.env when present)")

	cmd.AddCommand(
		newCheckCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads the env file, then the config file and environment.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if _, err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}
	return config.Load(o.configPath)
}

// monitorConfig loads and validates everything a polling run needs. On
// failure it makes one attempt to report the error to the chat webhook.
func (o *rootOptions) monitorConfig(ctx context.Context, dryRun bool) (*config.Config, *slog.Logger, error) {
	cfg, err := o.loadConfig()
	if err == nil {
		if dryRun {
			cfg.Notify.Platform = config.PlatformLog
		}
		err = config.ValidateMonitor(cfg)
	}
	if err != nil {
		fallback := cfg
		if fallback == nil {
			fallback = config.FromEnv()
		}
		logger := buildLogger(fallback.Logging)
		logger.Error("configuration error", "error", err)
		notifyConfigError(ctx, fallback, err, logger)
		return nil, nil, err
	}
	return cfg, buildLogger(cfg.Logging), nil
}

// notifyConfigError posts a plain notice when a webhook is configured for
// the selected platform.
func notifyConfigError(ctx context.Context, cfg *config.Config, cause error, logger *slog.Logger) {
	if cfg.WebhookURL() == "" {
		return
	}
	dispatcher := service.NewDispatcher(newNotifier(cfg, logger), logger)
	dispatcher.Send(ctx, configErrorMessage(cause))
}

func configErrorMessage(err error) string {
	return fmt.Sprintf("⚠️ lockwatch configuration error: %v", err)
}
