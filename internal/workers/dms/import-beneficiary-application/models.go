// internal/workers/dms/import-beneficiary-application/models.go
package importbeneficiaryapplication

type Input struct {
	ProcedureID   int `json:"procedureId"`
	ApplicationID int `json:"applicationId"`
}

type Output struct {
	Status          string            `json:"status"`
	ProcedureID     int               `json:"procedureId"`
	ApplicationID   int               `json:"applicationId"`
	Email           string            `json:"email"`
	Activity        string            `json:"activity,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
	ErrorDocumentID string            `json:"errorDocumentId,omitempty"`
}

// Import outcomes. A parsing error completes the job so the process can
// route to the notification task.
const (
	StatusImported     = "imported"
	StatusParsingError = "parsing_error"
)
