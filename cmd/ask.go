package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askLimit int

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer an open-ended fundraising question",
	Long:  `Examples: "how many donations this month", "top 5 donors this quarter", "who gave last year but hasn't given since".`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println(e.Service.Ask(cmd.Context(), strings.Join(args, " "), askLimit))
		return nil
	},
}

func init() {
	askCmd.Flags().IntVar(&askLimit, "limit", 0, "max rows (default from config)")
	rootCmd.AddCommand(askCmd)
}
