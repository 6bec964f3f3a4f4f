// internal/workers/dms/sync-closed-applications/models.go
package syncclosedapplications

type Input struct {
	ProcedureID int `json:"procedureId"`
}

type Output struct {
	RunID          string `json:"runId"`
	ProcedureID    int    `json:"procedureId"`
	ApplicationIDs []int  `json:"applicationIds"`
	Count          int    `json:"count"`
}
