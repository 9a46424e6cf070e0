package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var blobCmd = &cobra.Command{
	Use:   "blob <region>",
	Short: "Print a region's stored snapshot verbatim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		raw, err := env.Service.Blob(ctx, args[0])
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(raw); err != nil {
			return eris.Wrap(err, "write blob")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blobCmd)
}
