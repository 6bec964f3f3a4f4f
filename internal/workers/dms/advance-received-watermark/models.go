// internal/workers/dms/advance-received-watermark/models.go
package advancereceivedwatermark

import "time"

type Input struct {
	ProcedureID int `json:"procedureId"`
	// NewestUpdate comes from dms-sync-received-applications.
	NewestUpdate *time.Time `json:"newestUpdate,omitempty"`
}

type Output struct {
	ProcedureID int        `json:"procedureId"`
	Watermark   *time.Time `json:"watermark,omitempty"`
	Advanced    bool       `json:"watermarkAdvanced"`
}
