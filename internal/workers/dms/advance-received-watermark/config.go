// internal/workers/dms/advance-received-watermark/config.go
package advancereceivedwatermark

import (
	"time"

	"dms-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: time.Duration(config.GetWorkerConfig(cfg, TaskType).Timeout) * time.Millisecond,
	}
}
