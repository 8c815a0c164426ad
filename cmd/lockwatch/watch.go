package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonny/lockwatch/internal/config"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		interval time.Duration
		dryRun   bool
		serve    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check the configured locks on an interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := opts.monitorConfig(ctx, dryRun)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = cfg.Watch.Interval
			}
			if interval <= 0 {
				return errors.New("watch interval must be positive")
			}

			if err := runWatch(ctx, cfg, logger, interval, serve); err != nil {
				return err
			}
			logger.Info("watch stopped")
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "time between checks (default watch.interval from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log notifications instead of posting them")
	cmd.Flags().BoolVar(&serve, "serve", false, "also run the interaction server")
	return cmd
}

// runWatch repeats a monitor run every interval until ctx is done. With
// serve set, the interaction receivers are started first so a setup error
// returns before any polling begins.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, interval time.Duration, serve bool) error {
	g, gCtx := errgroup.WithContext(ctx)
	if serve {
		if err := startInteractionReceivers(gCtx, g, cfg, logger); err != nil {
			return err
		}
	}

	monitor := newMonitor(cfg, logger)
	devices := cfg.Devices()
	g.Go(func() error {
		logger.Info("watching locks", "devices", len(devices), "interval", interval)
		runEvery(gCtx, interval, func(ctx context.Context) {
			monitor.Run(ctx, devices)
		})
		return nil
	})

	return g.Wait()
}

// runEvery calls fn immediately and then on every tick until ctx is done.
func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
