// internal/repository/processed_test.go
package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"dms-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Cache miss and hit
// ==========================

func TestProcessedApplications_CacheMissQueriesPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("dms:processed:201201").RedisNil()
	mock.ExpectQuery(regexp.QuoteMeta(processedIDsQuery)).
		WithArgs(201201, SourceDMS).
		WillReturnRows(sqlmock.NewRows([]string{"application_id"}).AddRow(7).AddRow(3))
	redisMock.ExpectSet("dms:processed:201201", []byte("[3,7]"), time.Minute).SetVal("OK")

	repo := NewProcessedApplications(db, rdb, time.Minute, logger.NewTestLogger(t))
	ids, err := repo.ProcessedIDs(context.Background(), 201201)

	require.NoError(t, err)
	assert.Equal(t, map[int]struct{}{3: {}, 7: {}}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestProcessedApplications_CacheHitSkipsPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("dms:processed:201201").SetVal("[1,2]")

	repo := NewProcessedApplications(db, rdb, time.Minute, logger.NewTestLogger(t))
	ids, err := repo.ProcessedIDs(context.Background(), 201201)

	require.NoError(t, err)
	assert.Equal(t, map[int]struct{}{1: {}, 2: {}}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedApplications_CacheErrorFallsThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("dms:processed:5").SetErr(errors.New("connection refused"))
	mock.ExpectQuery(regexp.QuoteMeta(processedIDsQuery)).
		WithArgs(5, SourceDMS).
		WillReturnRows(sqlmock.NewRows([]string{"application_id"}).AddRow(1))
	redisMock.ExpectSet("dms:processed:5", []byte("[1]"), time.Minute).SetErr(errors.New("connection refused"))

	repo := NewProcessedApplications(db, rdb, time.Minute, logger.NewTestLogger(t))
	ids, err := repo.ProcessedIDs(context.Background(), 5)

	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestProcessedApplications_CorruptCacheEntry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("dms:processed:5").SetVal("not-json")
	mock.ExpectQuery(regexp.QuoteMeta(processedIDsQuery)).
		WithArgs(5, SourceDMS).
		WillReturnRows(sqlmock.NewRows([]string{"application_id"}))
	redisMock.ExpectSet("dms:processed:5", []byte("[]"), time.Minute).SetVal("OK")

	repo := NewProcessedApplications(db, rdb, time.Minute, logger.NewTestLogger(t))
	ids, err := repo.ProcessedIDs(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Without cache
// ==========================

func TestProcessedApplications_NoCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(processedIDsQuery)).
		WithArgs(9, SourceDMS).
		WillReturnRows(sqlmock.NewRows([]string{"application_id"}).AddRow(4))

	repo := NewProcessedApplications(db, nil, time.Minute, logger.NewNoOpLogger())
	ids, err := repo.ProcessedIDs(context.Background(), 9)

	require.NoError(t, err)
	assert.Contains(t, ids, 4)
	repo.Invalidate(context.Background(), 9)
}

func TestProcessedApplications_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	queryErr := errors.New("relation does not exist")
	mock.ExpectQuery(regexp.QuoteMeta(processedIDsQuery)).WillReturnError(queryErr)

	repo := NewProcessedApplications(db, nil, 0, logger.NewNoOpLogger())
	_, err = repo.ProcessedIDs(context.Background(), 9)

	assert.ErrorIs(t, err, queryErr)
}

func TestProcessedApplications_Invalidate(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("dms:processed:9").SetVal(1)

	NewProcessedApplications(nil, rdb, time.Minute, logger.NewTestLogger(t)).Invalidate(context.Background(), 9)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}
