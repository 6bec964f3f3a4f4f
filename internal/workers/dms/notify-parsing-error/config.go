// internal/workers/dms/notify-parsing-error/config.go
package notifyparsingerror

import (
	"time"

	"dms-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled,
		Timeout:      time.Duration(config.GetWorkerConfig(cfg, TaskType).Timeout) * time.Millisecond,
	}
}
