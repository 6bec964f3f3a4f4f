// internal/workers/dms/import-bank-information/config.go
package importbankinformation

import (
	"time"

	"dms-workers/internal/common/config"
)

type Config struct {
	EventsEnabled bool
	Timeout       time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		EventsEnabled: cfg.Notifications.Events.Enabled,
		Timeout:       time.Duration(config.GetWorkerConfig(cfg, TaskType).Timeout) * time.Millisecond,
	}
}
