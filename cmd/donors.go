package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var donorsLimit int

var donorsCmd = &cobra.Command{
	Use:   "donors [criteria...]",
	Short: "Query donor segments from free-text criteria",
	Long:  `Examples: "lapsed donors", "major donors over $5000", "recent donors from last 3 months", "first-time donors".`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		criteria := strings.Join(args, " ")
		fmt.Println(e.Service.QueryDonors(cmd.Context(), criteria, donorsLimit))
		return nil
	},
}

func init() {
	donorsCmd.Flags().IntVar(&donorsLimit, "limit", 0, "max rows (default from config)")
	rootCmd.AddCommand(donorsCmd)
}
