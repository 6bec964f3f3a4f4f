// internal/workers/dms/sync-received-applications/handler_test.go
package syncreceivedapplications

import (
	"context"
	"testing"
	"time"

	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/dms"
	"dms-workers/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type fakePages struct {
	apps []dms.ApplicationSummary
}

func (f *fakePages) FetchPage(context.Context, int, string, int, int) (*dms.Page, error) {
	return &dms.Page{TotalPages: 1, Applications: f.apps}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func receivedPages() *fakePages {
	return &fakePages{apps: []dms.ApplicationSummary{
		{ID: 1, State: dms.StateReceived, UpdatedAt: at("2021-09-20T08:00:00Z")},
		{ID: 2, State: dms.StateInitiated, UpdatedAt: at("2021-09-18T08:00:00Z")},
		{ID: 3, State: dms.StateClosed, UpdatedAt: at("2021-09-21T08:00:00Z")},
		{ID: 4, State: dms.StateInitiated, UpdatedAt: at("2021-09-01T08:00:00Z")},
	}}
}

func setupTest(t *testing.T, pages *fakePages) (*Handler, *repository.WatermarkStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repository.NewWatermarkStore(rdb, 0)
	log := logger.NewTestLogger(t)
	handler := NewHandler(&Config{Token: "dms-token", PageSize: 50, Timeout: 5 * time.Second},
		pages, store, errors.NewErrorHandler(log, time.Second), nil, log)
	return handler, store, mr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_UsesStoredWatermark(t *testing.T) {
	handler, store, _ := setupTest(t, receivedPages())
	ctx := context.Background()

	_, err := store.Advance(ctx, 201201, at("2021-09-10T00:00:00Z"))
	require.NoError(t, err)

	output, err := handler.Execute(ctx, &Input{ProcedureID: 201201})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, output.ApplicationIDs)
	assert.Equal(t, 2, output.Count)
	require.NotNil(t, output.Watermark)
	assert.True(t, at("2021-09-10T00:00:00Z").Equal(*output.Watermark))
	require.NotNil(t, output.NewestUpdate)
	assert.True(t, at("2021-09-20T08:00:00Z").Equal(*output.NewestUpdate))
}

func TestHandler_Execute_LeavesWatermarkUntilImported(t *testing.T) {
	handler, store, _ := setupTest(t, receivedPages())
	ctx := context.Background()

	_, err := store.Advance(ctx, 201201, at("2021-09-10T00:00:00Z"))
	require.NoError(t, err)

	_, err = handler.Execute(ctx, &Input{ProcedureID: 201201})
	require.NoError(t, err)

	stored, err := store.Get(ctx, 201201)
	require.NoError(t, err)
	assert.True(t, at("2021-09-10T00:00:00Z").Equal(stored))
}

func TestHandler_Execute_InputOverridesWatermark(t *testing.T) {
	handler, store, _ := setupTest(t, receivedPages())
	ctx := context.Background()

	_, err := store.Advance(ctx, 201201, at("2021-09-30T00:00:00Z"))
	require.NoError(t, err)

	since := at("2021-08-01T00:00:00Z")
	output, err := handler.Execute(ctx, &Input{ProcedureID: 201201, LastUpdate: &since})

	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 1}, output.ApplicationIDs)
	assert.True(t, since.Equal(*output.Watermark))
	stored, err := store.Get(ctx, 201201)
	require.NoError(t, err)
	assert.True(t, at("2021-09-30T00:00:00Z").Equal(stored))
}

func TestHandler_Execute_NoNewApplications(t *testing.T) {
	handler, _, _ := setupTest(t, &fakePages{})

	since := at("2021-08-01T00:00:00Z")
	output, err := handler.Execute(context.Background(), &Input{ProcedureID: 201201, LastUpdate: &since})

	require.NoError(t, err)
	assert.Empty(t, output.ApplicationIDs)
	assert.Nil(t, output.NewestUpdate)
	assert.True(t, since.Equal(*output.Watermark))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_MissingWatermark(t *testing.T) {
	handler, _, _ := setupTest(t, receivedPages())

	_, err := handler.Execute(context.Background(), &Input{ProcedureID: 201201})

	require.ErrorIs(t, err, dms.ErrMissingWatermark)
	assert.Equal(t, errors.ErrCodeDMSMissingWatermark, errors.FromDMSError(err).Code)
}

func TestHandler_Execute_CacheUnavailable(t *testing.T) {
	handler, _, mr := setupTest(t, receivedPages())
	mr.Close()

	_, err := handler.Execute(context.Background(), &Input{ProcedureID: 201201})

	require.Error(t, err)
	stdErr := errors.FromDMSError(err)
	assert.Equal(t, errors.ErrCodeCacheUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
