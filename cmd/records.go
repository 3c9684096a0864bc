package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fundraising-cli/internal/donor"
)

func parseFields(raw string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, eris.Wrap(err, "parse fields JSON")
	}
	return fields, nil
}

var createCmd = &cobra.Command{
	Use:   "create [sobject] [fields-json]",
	Short: "Create a record of any sObject type",
	Long:  `Example: create Contact '{"FirstName":"Ada","LastName":"Lovelace","Email":"ada@example.org"}'`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseFields(args[1])
		if err != nil {
			return err
		}
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println(e.Service.CreateRecord(cmd.Context(), args[0], fields))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [sobject] [record-id] [fields-json]",
	Short: "Update a record of any sObject type by ID",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseFields(args[2])
		if err != nil {
			return err
		}
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println(e.Service.UpdateRecord(cmd.Context(), args[0], args[1], fields))
		return nil
	},
}

var bulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update [records-json]",
	Short: "Apply record updates sequentially with a per-item summary",
	Long:  `Example: bulk-update '[{"sobject":"Contact","id":"003...","fields":{"Email":"new@example.org"}}]'`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var records []donor.BulkRecord
		if err := json.Unmarshal([]byte(args[0]), &records); err != nil {
			return eris.Wrap(err, "parse records JSON")
		}
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println(e.Service.BulkUpdate(cmd.Context(), records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(bulkUpdateCmd)
}
