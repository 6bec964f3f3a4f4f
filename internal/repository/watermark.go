// internal/repository/watermark.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// watermarkLayout is RFC3339Nano with a fixed-width fraction. Values are
// stored in UTC so they compare lexicographically.
const watermarkLayout = "2006-01-02T15:04:05.000000000Z07:00"

// advanceScript sets the key only when the new value is later than the
// stored one. ARGV[2] is a TTL in milliseconds, 0 for none.
var advanceScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current and current >= ARGV[1] then
  return 0
end
if tonumber(ARGV[2]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

func watermarkKey(procedureID int) string {
	return fmt.Sprintf("dms:watermark:%d", procedureID)
}

// WatermarkStore keeps, per procedure, the latest modification date handed
// to the received-applications sync.
type WatermarkStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewWatermarkStore(rdb *redis.Client, ttl time.Duration) *WatermarkStore {
	return &WatermarkStore{redis: rdb, ttl: ttl}
}

// Get returns the zero time when no watermark was recorded.
func (s *WatermarkStore) Get(ctx context.Context, procedureID int) (time.Time, error) {
	raw, err := s.redis.Get(ctx, watermarkKey(procedureID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read watermark of procedure %d: %w", procedureID, err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse watermark of procedure %d: %w", procedureID, err)
	}
	return t, nil
}

// Advance records t unless a later watermark is already stored. It reports
// whether the stored value changed.
func (s *WatermarkStore) Advance(ctx context.Context, procedureID int, t time.Time) (bool, error) {
	if t.IsZero() {
		return false, nil
	}
	value := t.UTC().Format(watermarkLayout)

	changed, err := advanceScript.Run(ctx, s.redis, []string{watermarkKey(procedureID)}, value, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("advance watermark of procedure %d: %w", procedureID, err)
	}
	return changed == 1, nil
}

// Reset removes the watermark of a procedure.
func (s *WatermarkStore) Reset(ctx context.Context, procedureID int) error {
	if err := s.redis.Del(ctx, watermarkKey(procedureID)).Err(); err != nil {
		return fmt.Errorf("reset watermark of procedure %d: %w", procedureID, err)
	}
	return nil
}
