package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var soqlLimit int

var soqlCmd = &cobra.Command{
	Use:   "soql [query...]",
	Short: "Run a raw SOQL query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println(e.Service.RunQuery(cmd.Context(), strings.Join(args, " "), soqlLimit))
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile [identifier]",
	Short: "Fetch a donor profile by contact ID or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println(e.Service.DonorProfile(cmd.Context(), args[0]))
		return nil
	},
}

var prospectsCmd = &cobra.Command{
	Use:   "prospects",
	Short: "Rank lapsed donors as upgrade prospects",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println(e.Service.FindProspects(cmd.Context()))
		return nil
	},
}

func init() {
	soqlCmd.Flags().IntVar(&soqlLimit, "limit", 0, "max rows (default from config)")
	rootCmd.AddCommand(soqlCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(prospectsCmd)
}
