package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/vetverify/internal/monitoring"
)

var (
	statusStaleAfter time.Duration
	statusJSON       bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how fresh each region's cached snapshot is",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		staleAfter := statusStaleAfter
		if staleAfter == 0 {
			staleAfter = cfg.Monitoring.StaleAfter()
		}

		snap, err := monitoring.NewCollector(env.Registry, env.Cache, env.Breakers, env.Metrics).Collect(ctx, staleAfter)
		if err != nil {
			return err
		}

		if statusJSON {
			return printJSON(os.Stdout, snap)
		}
		formatStatus(os.Stdout, snap)
		return nil
	},
}

func init() {
	statusCmd.Flags().DurationVar(&statusStaleAfter, "stale-after", 0, "age at which a snapshot is stale (default from config)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the snapshot as JSON")
	rootCmd.AddCommand(statusCmd)
}
