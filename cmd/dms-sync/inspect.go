// cmd/dms-sync/inspect.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dms-workers/internal/dms"
)

func (c *cli) inspectCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Parse a saved bank information payload",
		Long: `Read a bank information application saved as JSON and print the fields
picked out of it. Runs offline.

Example:
  dms-sync inspect --file dossier.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			var app dms.BankInformationApplication
			if err := json.Unmarshal(raw, &app); err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}
			return printJSON(cmd.OutOrStdout(), dms.ParseBankInformationFields(&app))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
