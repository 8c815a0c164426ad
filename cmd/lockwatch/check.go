package main

import (
	"github.com/spf13/cobra"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Query every configured lock once and notify about unlocked ones",
		Long: `check runs a single pass over SESAME_DEVICE_IDS and exits. It is the
form meant for cron or another external scheduler.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.monitorConfig(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			newMonitor(cfg, logger).Run(cmd.Context(), cfg.Devices())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log notifications instead of posting them")
	return cmd
}
