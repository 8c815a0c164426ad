package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonny/lockwatch/pkg/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat interaction endpoint that locks devices on button clicks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := buildLogger(cfg.Logging)

			g, gCtx := errgroup.WithContext(cmd.Context())
			if err := startInteractionReceivers(gCtx, g, cfg, logger); err != nil {
				return err
			}

			logger.Info("lockwatch started", "version", version.String())

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("lockwatch stopped")
			return nil
		},
	}
}
