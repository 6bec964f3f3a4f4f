// internal/repository/processed.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	apperrors "dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/dms"

	"github.com/redis/go-redis/v9"
)

// SourceDMS tags imports coming from Démarches Simplifiées.
const SourceDMS = "demarches_simplifiees"

const processedIDsQuery = `SELECT application_id FROM beneficiary_imports WHERE source_id = $1 AND source = $2`

func processedKey(procedureID int) string {
	return fmt.Sprintf("dms:processed:%d", procedureID)
}

// ProcessedApplications lists the applications of a procedure that already
// have an import record. Results are cached in Redis; a cache failure falls
// through to Postgres.
type ProcessedApplications struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

var _ dms.ProcessedIDLookup = (*ProcessedApplications)(nil)

// NewProcessedApplications accepts a nil redis client to disable caching.
func NewProcessedApplications(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *ProcessedApplications {
	return &ProcessedApplications{db: db, redis: rdb, ttl: ttl, logger: log}
}

func (r *ProcessedApplications) ProcessedIDs(ctx context.Context, procedureID int) (map[int]struct{}, error) {
	if ids, ok := r.cached(ctx, procedureID); ok {
		return toSet(ids), nil
	}

	rows, err := r.db.QueryContext(ctx, processedIDsQuery, procedureID, SourceDMS)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(processedIDsQuery, err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan processed application: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed applications: %w", err)
	}

	r.store(ctx, procedureID, ids)
	return toSet(ids), nil
}

// Invalidate drops the cached list of a procedure.
func (r *ProcessedApplications) Invalidate(ctx context.Context, procedureID int) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Del(ctx, processedKey(procedureID)).Err(); err != nil {
		r.logger.Warn("Failed to invalidate processed applications cache", map[string]interface{}{
			"procedureId": procedureID,
			"error":       err.Error(),
		})
	}
}

func (r *ProcessedApplications) cached(ctx context.Context, procedureID int) ([]int, bool) {
	if r.redis == nil {
		return nil, false
	}
	data, err := r.redis.Get(ctx, processedKey(procedureID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("Processed applications cache unavailable", map[string]interface{}{
			"procedureId": procedureID,
			"error":       err.Error(),
		})
		return nil, false
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		r.logger.Warn("Discarding corrupt processed applications cache entry", map[string]interface{}{
			"procedureId": procedureID,
			"error":       err.Error(),
		})
		return nil, false
	}
	return ids, true
}

func (r *ProcessedApplications) store(ctx context.Context, procedureID int, ids []int) {
	if r.redis == nil || r.ttl <= 0 {
		return
	}
	sorted := append([]int{}, ids...)
	sort.Ints(sorted)
	data, _ := json.Marshal(sorted)

	if err := r.redis.Set(ctx, processedKey(procedureID), data, r.ttl).Err(); err != nil {
		r.logger.Warn("Failed to cache processed applications", map[string]interface{}{
			"procedureId": procedureID,
			"error":       err.Error(),
		})
	}
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
