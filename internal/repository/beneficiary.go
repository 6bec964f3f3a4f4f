// internal/repository/beneficiary.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dms-workers/internal/dms"
)

// Import statuses stored in beneficiary_imports.status.
const (
	ImportStatusCreated = "CREATED"
	ImportStatusError   = "ERROR"
)

const upsertImportQuery = `
INSERT INTO beneficiary_imports (application_id, source_id, source, status, email, payload, activity, errors, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (application_id, source_id) DO UPDATE SET
	status = EXCLUDED.status,
	email = EXCLUDED.email,
	payload = EXCLUDED.payload,
	activity = EXCLUDED.activity,
	errors = EXCLUDED.errors,
	updated_at = now()`

// BeneficiaryImports records the outcome of each beneficiary import.
type BeneficiaryImports struct {
	db        *sql.DB
	processed *ProcessedApplications
}

// NewBeneficiaryImports takes the processed-ID lookup whose cache must be
// dropped after each write. processed may be nil.
func NewBeneficiaryImports(db *sql.DB, processed *ProcessedApplications) *BeneficiaryImports {
	return &BeneficiaryImports{db: db, processed: processed}
}

// Save stores a successfully parsed application. A nil activity is stored as NULL.
func (r *BeneficiaryImports) Save(ctx context.Context, app *dms.NormalizedApplication, activity *dms.Activity) error {
	payload, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("encode application %d: %w", app.ApplicationID, err)
	}

	var activityValue sql.NullString
	if activity != nil {
		activityValue = sql.NullString{String: string(*activity), Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, upsertImportQuery,
		app.ApplicationID, app.ProcedureID, SourceDMS, ImportStatusCreated,
		app.Email, payload, activityValue, nil,
	); err != nil {
		return fmt.Errorf("save import of application %d: %w", app.ApplicationID, err)
	}

	r.invalidate(ctx, app.ProcedureID)
	return nil
}

// SaveError records a failed import with its per-field errors.
func (r *BeneficiaryImports) SaveError(ctx context.Context, procedureID, applicationID int, email string, fieldErrors map[string]string) error {
	encoded, err := json.Marshal(fieldErrors)
	if err != nil {
		return fmt.Errorf("encode errors of application %d: %w", applicationID, err)
	}

	if _, err := r.db.ExecContext(ctx, upsertImportQuery,
		applicationID, procedureID, SourceDMS, ImportStatusError,
		email, nil, nil, encoded,
	); err != nil {
		return fmt.Errorf("save failed import of application %d: %w", applicationID, err)
	}

	r.invalidate(ctx, procedureID)
	return nil
}

func (r *BeneficiaryImports) invalidate(ctx context.Context, procedureID int) {
	if r.processed != nil {
		r.processed.Invalidate(ctx, procedureID)
	}
}
