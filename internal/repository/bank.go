// internal/repository/bank.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"dms-workers/internal/dms"
)

// The upsert only replaces a row when the incoming modification date is newer.
const upsertBankInformationQuery = `
INSERT INTO bank_informations (application_id, siren, siret, venue_name, iban, bic, status, date_modified_at_last_provider)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (application_id) DO UPDATE SET
	siren = EXCLUDED.siren,
	siret = EXCLUDED.siret,
	venue_name = EXCLUDED.venue_name,
	iban = EXCLUDED.iban,
	bic = EXCLUDED.bic,
	status = EXCLUDED.status,
	date_modified_at_last_provider = EXCLUDED.date_modified_at_last_provider
WHERE bank_informations.date_modified_at_last_provider < EXCLUDED.date_modified_at_last_provider`

type BankInformation struct {
	db *sql.DB
}

func NewBankInformation(db *sql.DB) *BankInformation {
	return &BankInformation{db: db}
}

// Save upserts the bank information of an application. It reports false when
// the stored row is at least as recent and was left untouched.
func (r *BankInformation) Save(ctx context.Context, detail *dms.ApplicationDetail) (bool, error) {
	res, err := r.db.ExecContext(ctx, upsertBankInformationQuery,
		detail.ApplicationID,
		nullString(detail.Siren),
		nullString(detail.Siret),
		nullString(detail.VenueName),
		nullString(detail.IBAN),
		nullString(detail.BIC),
		string(detail.Status),
		detail.ModificationDate,
	)
	if err != nil {
		return false, fmt.Errorf("save bank information of application %d: %w", detail.ApplicationID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
