// internal/workers/dms/sync-received-applications/config.go
package syncreceivedapplications

import (
	"time"

	"dms-workers/internal/common/config"
)

type Config struct {
	Token    string
	PageSize int
	Timeout  time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Token:    cfg.DMS.Token,
		PageSize: cfg.DMS.PageSize,
		Timeout:  time.Duration(config.GetWorkerConfig(cfg, TaskType).Timeout) * time.Millisecond,
	}
}
