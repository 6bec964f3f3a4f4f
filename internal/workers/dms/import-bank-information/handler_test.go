// internal/workers/dms/import-bank-information/handler_test.go
package importbankinformation

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"dms-workers/internal/common/aws"
	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/dms"
	"dms-workers/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type fakeDetailClient struct {
	legacy *dms.LegacyApplication
	err    error
}

func (f *fakeDetailClient) FetchLegacyApplication(context.Context, int, int, string) (*dms.LegacyApplication, error) {
	return f.legacy, f.err
}

func (f *fakeDetailClient) FetchBankInformationApplication(context.Context, int, string) (*dms.BankInformationApplication, error) {
	return nil, f.err
}

func (f *fakeDetailClient) FetchBeneficiaryApplication(context.Context, int, string) (*dms.BeneficiaryApplication, error) {
	return nil, f.err
}

type mockSNS struct {
	published []*sns.PublishInput
	err       error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.published = append(m.published, params)
	return &sns.PublishOutput{MessageId: awssdk.String("sns-1")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

const (
	topicARN        = "arn:aws:sns:eu-west-3:123456789012:dms-events"
	upsertBankQuery = "INSERT INTO bank_informations"
)

var updatedAt = time.Date(2021, 11, 12, 13, 51, 42, 0, time.UTC)

func strPtr(s string) *string { return &s }

func legacyApplication(state string, fields ...dms.RawApplicationField) *dms.LegacyApplication {
	base := []dms.RawApplicationField{
		{Label: dms.LabelIBAN, Value: strPtr("FR76 3000 1007 9412 3456 7890 185")},
		{Label: dms.LabelBIC, Value: strPtr("qsdfgh8z")},
	}
	return &dms.LegacyApplication{
		ID:        9,
		State:     state,
		UpdatedAt: updatedAt,
		Siren:     "438391195",
		Fields:    append(base, fields...),
	}
}

type testEnv struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	sns     *mockSNS
}

func setupTest(t *testing.T, client *fakeDetailClient, eventsEnabled bool) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fetcher, err := dms.NewFetcher(dms.FetcherConfig{
		Token:              "secret",
		OffererProcedureID: 11,
		VenueProcedureID:   22,
	}, client)
	require.NoError(t, err)

	svc := &mockSNS{}
	log := logger.NewTestLogger(t)
	return &testEnv{
		handler: NewHandler(
			&Config{EventsEnabled: eventsEnabled, Timeout: 5 * time.Second},
			fetcher,
			repository.NewBankInformation(db),
			aws.NewEventPublisherWith(svc, topicARN),
			errors.NewErrorHandler(log, time.Second),
			log,
		),
		mock: mock,
		sns:  svc,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_OffererPublishesEvent(t *testing.T) {
	env := setupTest(t, &fakeDetailClient{legacy: legacyApplication("closed")}, true)

	env.mock.ExpectExec(regexp.QuoteMeta(upsertBankQuery)).
		WithArgs(9,
			sql.NullString{String: "438391195", Valid: true},
			sql.NullString{},
			sql.NullString{},
			sql.NullString{String: "FR7630001007941234567890185", Valid: true},
			sql.NullString{String: "QSDFGH8Z", Valid: true},
			"ACCEPTED",
			updatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := env.handler.Execute(context.Background(), &Input{ApplicationID: 9, Kind: KindOfferer})

	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", output.Status)
	assert.True(t, output.Saved)
	assert.Equal(t, "sns-1", output.EventID)
	assert.NoError(t, env.mock.ExpectationsWereMet())

	require.Len(t, env.sns.published, 1)
	published := env.sns.published[0]
	assert.Equal(t, topicARN, awssdk.ToString(published.TopicArn))
	assert.Equal(t, EventBankInformationUpdated, awssdk.ToString(published.MessageAttributes["eventType"].StringValue))

	var event BankInformationUpdated
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(published.Message)), &event))
	assert.Equal(t, 9, event.ApplicationID)
	assert.Equal(t, KindOfferer, event.Kind)
	assert.NotContains(t, awssdk.ToString(published.Message), "FR76")
}

func TestHandler_Execute_VenueWithoutSiret(t *testing.T) {
	client := &fakeDetailClient{legacy: legacyApplication("received",
		dms.RawApplicationField{Label: dms.LabelVenueWithoutSiret, Value: strPtr("Le Grand Rex")},
	)}
	env := setupTest(t, client, false)
	env.mock.ExpectExec(regexp.QuoteMeta(upsertBankQuery)).WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := env.handler.Execute(context.Background(), &Input{ApplicationID: 9, Kind: KindVenue})

	require.NoError(t, err)
	assert.Equal(t, "DRAFT", output.Status)
	assert.Equal(t, "Le Grand Rex", output.VenueName)
	assert.Empty(t, output.Siret)
	assert.Empty(t, output.EventID)
	assert.Empty(t, env.sns.published)
}

func TestHandler_Execute_StaleRowSkipsEvent(t *testing.T) {
	env := setupTest(t, &fakeDetailClient{legacy: legacyApplication("refused")}, true)
	env.mock.ExpectExec(regexp.QuoteMeta(upsertBankQuery)).WillReturnResult(sqlmock.NewResult(0, 0))

	output, err := env.handler.Execute(context.Background(), &Input{ApplicationID: 9, Kind: KindOfferer})

	require.NoError(t, err)
	assert.False(t, output.Saved)
	assert.Equal(t, "REJECTED", output.Status)
	assert.Empty(t, env.sns.published)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		client   *fakeDetailClient
		input    *Input
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing application id",
			client:   &fakeDetailClient{},
			input:    &Input{Kind: KindOfferer},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown kind",
			client:   &fakeDetailClient{},
			input:    &Input{ApplicationID: 9, Kind: "cinema"},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown venue schema version",
			client:   &fakeDetailClient{},
			input:    &Input{ApplicationID: 9, Kind: KindVenue, Version: 7},
			wantCode: errors.ErrCodeDMSUnknownVersion,
		},
		{
			name:     "unknown state",
			client:   &fakeDetailClient{legacy: legacyApplication("lost")},
			input:    &Input{ApplicationID: 9, Kind: KindOfferer},
			wantCode: errors.ErrCodeDMSUnknownState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTest(t, tt.client, true)

			output, err := env.handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.Equal(t, tt.wantCode, errors.FromDMSError(err).Code)
		})
	}
}

func TestHandler_Execute_SaveFails(t *testing.T) {
	env := setupTest(t, &fakeDetailClient{legacy: legacyApplication("closed")}, true)
	env.mock.ExpectExec(regexp.QuoteMeta(upsertBankQuery)).WillReturnError(sql.ErrConnDone)

	_, err := env.handler.Execute(context.Background(), &Input{ApplicationID: 9, Kind: KindOfferer})

	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, errors.FromDMSError(err).Code)
	assert.Empty(t, env.sns.published)
}

func TestHandler_Execute_PublishFails(t *testing.T) {
	env := setupTest(t, &fakeDetailClient{legacy: legacyApplication("closed")}, true)
	env.sns.err = stderrors.New("AuthorizationError")
	env.mock.ExpectExec(regexp.QuoteMeta(upsertBankQuery)).WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := env.handler.Execute(context.Background(), &Input{ApplicationID: 9, Kind: KindOfferer})

	stdErr := errors.FromDMSError(err)
	assert.Equal(t, errors.ErrCodeEventPublishFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
