// cmd/dms-sync/bankinfo.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dms-workers/internal/dms"
)

func (c *cli) bankInfoCmd() *cobra.Command {
	var (
		applicationID int
		kind          string
		version       int
	)

	cmd := &cobra.Command{
		Use:   "bank-info",
		Short: "Fetch the bank information of an application",
		Long: `Fetch an offerer or venue bank information application and print the
normalized detail. Nothing is written.

Examples:
  dms-sync bank-info --application 2567158 --kind offerer
  dms-sync bank-info --application 9 --kind venue --version 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fetcher, err := c.fetcher(cfg)
			if err != nil {
				return err
			}

			var detail *dms.ApplicationDetail
			switch kind {
			case "offerer":
				detail, err = fetcher.OffererApplicationDetail(cmd.Context(), applicationID)
			case "venue":
				detail, err = fetcher.VenueApplicationDetail(cmd.Context(), applicationID, version)
			default:
				return fmt.Errorf("unknown kind %q, expected offerer or venue", kind)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), detail)
		},
	}

	cmd.Flags().IntVarP(&applicationID, "application", "a", 0, "application ID")
	cmd.Flags().StringVarP(&kind, "kind", "k", "offerer", "offerer or venue")
	cmd.Flags().IntVar(&version, "version", dms.VenueSchemaLegacy, "venue procedure schema version")
	_ = cmd.MarkFlagRequired("application")
	return cmd
}
