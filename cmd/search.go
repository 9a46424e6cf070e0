package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/vetverify/internal/model"
)

var (
	searchFirst   string
	searchLast    string
	searchLicense string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <region>",
	Short: "Search one region's licensing source live",
	Long:  "Queries a region's upstream source directly with a first name, last name and license number filter. Empty fields match everything.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Service.Search(ctx, args[0], model.Filter{
			FirstName:     searchFirst,
			LastName:      searchLast,
			LicenseNumber: searchLicense,
		})
		if err != nil {
			return err
		}

		if searchJSON {
			if results == nil {
				results = []model.VerificationResult{}
			}
			return printJSON(os.Stdout, results)
		}
		formatResults(os.Stdout, results)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchFirst, "first", "", "first name prefix")
	searchCmd.Flags().StringVar(&searchLast, "last", "", "last name prefix")
	searchCmd.Flags().StringVar(&searchLicense, "license", "", "license number substring")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}
