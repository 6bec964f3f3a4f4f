// cmd/dms-sync/watermark.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dms-workers/internal/common/database"
	"dms-workers/internal/repository"
)

type watermarkResult struct {
	ProcedureID int        `json:"procedureId"`
	Watermark   *time.Time `json:"watermark,omitempty"`
	Changed     bool       `json:"changed"`
}

func (c *cli) watermarkCmd() *cobra.Command {
	var (
		procedureID int
		set         string
		reset       bool
	)

	cmd := &cobra.Command{
		Use:   "watermark",
		Short: "Show, advance or reset the received-applications watermark",
		Long: `Print the watermark stored in Redis for a procedure. --set advances it
(an earlier date is ignored) and --reset removes it, after which the next
received sync needs an explicit lastUpdate.

Example:
  dms-sync watermark --procedure 44623 --reset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if set != "" && reset {
				return fmt.Errorf("--set and --reset are mutually exclusive")
			}
			var setTo time.Time
			if set != "" {
				t, err := time.Parse(time.RFC3339, set)
				if err != nil {
					return fmt.Errorf("invalid --set %q: %w", set, err)
				}
				setTo = t
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			redis := database.NewRedis(cfg.Database.Redis)
			defer redis.Close()
			store := repository.NewWatermarkStore(redis.Client, cfg.DMS.WatermarkExpiry())

			ctx := cmd.Context()
			result := watermarkResult{ProcedureID: procedureID}
			switch {
			case reset:
				if err := store.Reset(ctx, procedureID); err != nil {
					return err
				}
				result.Changed = true
				return printJSON(cmd.OutOrStdout(), result)
			case set != "":
				changed, err := store.Advance(ctx, procedureID, setTo)
				if err != nil {
					return err
				}
				result.Changed = changed
			}

			current, err := store.Get(ctx, procedureID)
			if err != nil {
				return err
			}
			if !current.IsZero() {
				result.Watermark = &current
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVarP(&procedureID, "procedure", "p", 0, "procedure ID")
	cmd.Flags().StringVar(&set, "set", "", "RFC 3339 date to advance the watermark to")
	cmd.Flags().BoolVar(&reset, "reset", false, "remove the stored watermark")
	_ = cmd.MarkFlagRequired("procedure")
	return cmd
}
