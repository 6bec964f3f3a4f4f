// internal/repository/imports_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"dms-workers/internal/common/logger"
	"dms-workers/internal/dms"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func strPtr(s string) *string { return &s }

func createApplication() *dms.NormalizedApplication {
	return &dms.NormalizedApplication{
		ApplicationID:        1,
		ProcedureID:          201201,
		Civility:             "M",
		Email:                "jean.valgean@example.com",
		FirstName:            "Jean",
		LastName:             "VALGEAN",
		RegistrationDatetime: time.Date(2021, 9, 15, 15, 1, 33, 0, time.UTC),
		State:                "accepte",
		PostalCode:           strPtr("93130"),
	}
}

// ==========================
// BeneficiaryImports
// ==========================

func TestBeneficiaryImports_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()
	processed := NewProcessedApplications(db, rdb, time.Minute, logger.NewTestLogger(t))

	activity := dms.ActivityEmployee
	mock.ExpectExec(regexp.QuoteMeta(upsertImportQuery)).
		WithArgs(1, 201201, SourceDMS, ImportStatusCreated, "jean.valgean@example.com",
			sqlmock.AnyArg(), sql.NullString{String: "EMPLOYEE", Valid: true}, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	redisMock.ExpectDel("dms:processed:201201").SetVal(1)

	err = NewBeneficiaryImports(db, processed).Save(context.Background(), createApplication(), &activity)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestBeneficiaryImports_SaveWithoutActivity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(upsertImportQuery)).
		WithArgs(1, 201201, SourceDMS, ImportStatusCreated, "jean.valgean@example.com",
			sqlmock.AnyArg(), sql.NullString{}, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewBeneficiaryImports(db, nil).Save(context.Background(), createApplication(), nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBeneficiaryImports_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(upsertImportQuery)).
		WithArgs(4, 201201, SourceDMS, ImportStatusError, "cosette@example.com",
			nil, nil, []byte(`{"birth_date":"hier"}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewBeneficiaryImports(db, nil).SaveError(context.Background(), 201201, 4, "cosette@example.com",
		map[string]string{"birth_date": "hier"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBeneficiaryImports_SaveFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("deadlock detected")
	mock.ExpectExec(regexp.QuoteMeta(upsertImportQuery)).WillReturnError(dbErr)

	err = NewBeneficiaryImports(db, nil).Save(context.Background(), createApplication(), nil)

	assert.ErrorIs(t, err, dbErr)
}

// ==========================
// BankInformation
// ==========================

func createDetail() *dms.ApplicationDetail {
	return &dms.ApplicationDetail{
		ApplicationID:    9,
		Siren:            "438391195",
		Status:           dms.StatusDraft,
		IBAN:             "FR7630001007941234567890185",
		BIC:              "QSDFGH8Z",
		Siret:            "43839119500056",
		ModificationDate: time.Date(2021, 11, 12, 13, 51, 42, 0, time.UTC),
	}
}

func TestBankInformation_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	detail := createDetail()
	mock.ExpectExec(regexp.QuoteMeta(upsertBankInformationQuery)).
		WithArgs(9,
			sql.NullString{String: "438391195", Valid: true},
			sql.NullString{String: "43839119500056", Valid: true},
			sql.NullString{},
			sql.NullString{String: "FR7630001007941234567890185", Valid: true},
			sql.NullString{String: "QSDFGH8Z", Valid: true},
			"DRAFT",
			detail.ModificationDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := NewBankInformation(db).Save(context.Background(), detail)

	require.NoError(t, err)
	assert.True(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankInformation_SaveStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(upsertBankInformationQuery)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	saved, err := NewBankInformation(db).Save(context.Background(), createDetail())

	require.NoError(t, err)
	assert.False(t, saved)
}

func TestBankInformation_SaveFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(upsertBankInformationQuery)).
		WillReturnError(sql.ErrConnDone)

	_, err = NewBankInformation(db).Save(context.Background(), createDetail())

	assert.ErrorIs(t, err, sql.ErrConnDone)
}
