// internal/workers/dms/sync-received-applications/models.go
package syncreceivedapplications

import "time"

type Input struct {
	ProcedureID int `json:"procedureId"`
	// LastUpdate overrides the stored watermark when set.
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`
}

type Output struct {
	RunID          string `json:"runId"`
	ProcedureID    int    `json:"procedureId"`
	ApplicationIDs []int  `json:"applicationIds"`
	Count          int    `json:"count"`
	// Watermark is the lower bound used for this run.
	Watermark *time.Time `json:"watermark,omitempty"`
	// NewestUpdate is handed to dms-advance-received-watermark after the
	// imports complete. Unset when nothing was listed.
	NewestUpdate *time.Time `json:"newestUpdate,omitempty"`
}
