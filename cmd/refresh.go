package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/vetverify/internal/lookup"
)

var (
	refreshRegions     []string
	refreshForce       bool
	refreshMaxAge      time.Duration
	refreshConcurrency int
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh cached region snapshots from their live sources",
	Long:  "Live-fetches every selected region's full roster and writes it to the blob store. Regions whose snapshot is younger than --max-age are skipped unless --force is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if refreshConcurrency > 0 {
			cfg.Refresh.Concurrency = refreshConcurrency
		}
		env, err := initEnv(ctx, "refresh")
		if err != nil {
			return err
		}
		defer env.Close()

		maxAge := refreshMaxAge
		if maxAge == 0 {
			maxAge = cfg.Refresh.MaxAge()
		}

		report, err := lookup.NewEngine(env.Service).Refresh(ctx, lookup.RefreshOpts{
			Regions:     refreshRegions,
			Force:       refreshForce,
			MaxAge:      maxAge,
			Concurrency: cfg.Refresh.Concurrency,
		})
		if err != nil {
			return err
		}

		formatRefreshReport(os.Stdout, report)
		return nil
	},
}

func init() {
	refreshCmd.Flags().StringSliceVar(&refreshRegions, "regions", nil, "region codes or names to refresh (default all)")
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false, "refresh even when the snapshot is fresh")
	refreshCmd.Flags().DurationVar(&refreshMaxAge, "max-age", 0, "skip snapshots younger than this (default from config)")
	refreshCmd.Flags().IntVar(&refreshConcurrency, "concurrency", 0, "regions refreshed in parallel (default from config)")
	rootCmd.AddCommand(refreshCmd)
}
