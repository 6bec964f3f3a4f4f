// internal/workers/dms/import-beneficiary-application/config.go
package importbeneficiaryapplication

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
