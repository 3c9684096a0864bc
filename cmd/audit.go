package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent tool invocations from the query audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		audit, err := initAudit(cmd.Context())
		if err != nil {
			return err
		}
		if audit == nil {
			return eris.New("audit log not configured (set FUNDRAISING_STORE_DATABASE_URL)")
		}
		defer audit.Close() //nolint:errcheck

		entries, err := audit.Recent(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %-20s rows=%-4d hit=%-5t %dms\n  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Tool, e.RowCount, e.CacheHit, e.DurationMS, e.SOQL)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "max entries")
	rootCmd.AddCommand(auditCmd)
}
