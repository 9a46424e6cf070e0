package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/vetverify/internal/region"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List supported regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := region.NewDefaultRegistry(region.Options{URLs: cfg.RegionURLs()})
		formatRegions(os.Stdout, reg.All())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
