// cmd/dms-sync/trigger.go
package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"dms-workers/internal/common/camunda"
)

type triggerResult struct {
	Message        string `json:"message"`
	CorrelationKey string `json:"correlationKey"`
	Key            int64  `json:"key"`
}

func (c *cli) triggerCmd() *cobra.Command {
	var (
		procedureID int
		sync        string
	)

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Start an ingestion run through Zeebe",
		Long: `Publish the configured trigger message, correlated on the procedure ID,
so the deployed process starts a sync run.

Example:
  dms-sync trigger --procedure 44623 --sync closed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}

			client, err := camunda.NewClient(cfg.Camunda)
			if err != nil {
				return err
			}
			defer client.Close()

			correlationKey := strconv.Itoa(procedureID)
			key, err := client.PublishMessage(cmd.Context(), cfg.Camunda.TriggerMessage, correlationKey, map[string]interface{}{
				"procedureId": procedureID,
				"sync":        sync,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), triggerResult{
				Message:        cfg.Camunda.TriggerMessage,
				CorrelationKey: correlationKey,
				Key:            key,
			})
		},
	}

	cmd.Flags().IntVarP(&procedureID, "procedure", "p", 0, "procedure ID")
	cmd.Flags().StringVar(&sync, "sync", "closed", "closed or received")
	_ = cmd.MarkFlagRequired("procedure")
	return cmd
}
