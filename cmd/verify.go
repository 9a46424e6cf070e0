package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <region>",
	Short: "Serve a region's full roster from cache, falling back to a live fetch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		resp := env.Service.Verify(ctx, args[0])
		if err := printJSON(os.Stdout, resp); err != nil {
			return err
		}
		if !resp.OK {
			return eris.Errorf("verify %s: %s", args[0], resp.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
