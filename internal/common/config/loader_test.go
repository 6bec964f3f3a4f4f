// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: pass_culture
    user: pass
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
dms:
  token: secret
  offerer_procedure_id: 11
  venue_procedure_id: 22
  beneficiary_procedure_ids: [44623, 47380]
workers:
  dms-sync-closed-applications:
    enabled: true
    max_jobs_active: 2
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ==========================
// Loading
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.DMS.Token)
	assert.Equal(t, 11, cfg.DMS.OffererProcedureID)
	assert.Equal(t, 22, cfg.DMS.VenueProcedureID)
	assert.Equal(t, []int{44623, 47380}, cfg.DMS.BeneficiaryProcedureIDs)
	assert.Equal(t, 100, cfg.DMS.PageSize)
	assert.Equal(t, "https://www.demarches-simplifiees.fr/api/v1", cfg.DMS.LegacyBaseURL)
	assert.Equal(t, "dms-parsing-errors", cfg.DMS.ErrorIndex)
	assert.Equal(t, 5*time.Minute, cfg.DMS.ProcessedCacheExpiry())
	assert.Zero(t, cfg.DMS.WatermarkExpiry())
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "dms-sync-requested", cfg.Camunda.TriggerMessage)
	assert.Equal(t, "dms-workers", cfg.Observability.ServiceName)

	worker := GetWorkerConfig(cfg, "dms-sync-closed-applications")
	assert.Equal(t, 2, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
	assert.Equal(t, 3, worker.MaxRetries)
	assert.True(t, IsWorkerEnabled(cfg, "dms-import-bank-information"))
}

func TestLoadFromFile_TokenFromEnvironment(t *testing.T) {
	t.Setenv("DMS_TOKEN", "from-env")
	content := `
camunda: {broker_address: "localhost:26500"}
database:
  postgres: {host: localhost, database: pass_culture, user: pass}
  elasticsearch: {addresses: ["http://localhost:9200"]}
  redis: {address: "localhost:6379"}
`
	cfg, err := LoadFromFile(writeConfig(t, content))

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DMS.Token)
}

func TestLoadFromFile_PlaceholderExpansion(t *testing.T) {
	t.Setenv("DMS_GRAPHQL_HOST", "dms.example.test")
	content := `
camunda: {broker_address: "localhost:26500"}
database:
  postgres: {host: localhost, database: pass_culture, user: pass}
  elasticsearch: {addresses: ["http://localhost:9200"]}
  redis: {address: "localhost:6379"}
dms:
  token: secret
  graphql_url: https://${DMS_GRAPHQL_HOST}/api/v2/graphql
`
	cfg, err := LoadFromFile(writeConfig(t, content))

	require.NoError(t, err)
	assert.Equal(t, "https://dms.example.test/api/v2/graphql", cfg.DMS.GraphQLURL)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// ==========================
// Validation
// ==========================

func validConfig() *Config {
	cfg := &Config{}
	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Database.Postgres = PostgresConfig{Host: "localhost", Database: "pass_culture", User: "pass"}
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.DMS.Token = "secret"
	applyDefaults(cfg)
	return cfg
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing token", func(c *Config) { c.DMS.Token = "" }, "dms.token"},
		{"page size too large", func(c *Config) { c.DMS.PageSize = 5000 }, "dms.page_size"},
		{"negative ttl", func(c *Config) { c.DMS.WatermarkTTL = -1 }, "ttls"},
		{"email without sender", func(c *Config) { c.Notifications.Email.Enabled = true }, "from_email"},
		{"events without topic", func(c *Config) { c.Notifications.Events.Enabled = true }, "topic_arn"},
		{"sampling ratio", func(c *Config) { c.Observability.SamplingRatio = 2 }, "sampling_ratio"},
		{"missing broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "broker_address"},
		{"missing redis", func(c *Config) { c.Database.Redis.Address = "" }, "redis"},
	}

	require.NoError(t, validateConfig(validConfig()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "pass", Password: "pw", Database: "pass_culture", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=pass password=pw dbname=pass_culture sslmode=require", cfg.GetDSN())
}
