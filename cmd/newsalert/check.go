package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one news check and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			checker, _, err := newChecker(cfg, store)
			if err != nil {
				return err
			}

			stats := checker.Run(ctx)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: fetched=%d matched=%d saved=%d notified=%d notify_failed=%d skipped_url=%d skipped_similar=%d pruned=%d (%s)\n",
				stats.RunID, stats.Fetched, stats.Matched, stats.Saved, stats.Notified, stats.NotifyFailed,
				stats.SkippedURL, stats.SkippedSimilar, stats.Pruned, stats.Duration.Round(1e6))
			return stats.Err
		},
	}
}
