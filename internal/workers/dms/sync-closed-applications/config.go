// internal/workers/dms/sync-closed-applications/config.go
package syncclosedapplications

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
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Token:    cfg.DMS.Token,
		PageSize: cfg.DMS.PageSize,
		Timeout:  time.Duration(wcfg.Timeout) * time.Millisecond,
	}
}
