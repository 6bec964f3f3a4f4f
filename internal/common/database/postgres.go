// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dms-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// schema creates the tables written by the import workers.
const schema = `
CREATE TABLE IF NOT EXISTS beneficiary_imports (
	id                 BIGSERIAL PRIMARY KEY,
	application_id     INTEGER NOT NULL,
	source_id          INTEGER NOT NULL,
	source             TEXT NOT NULL DEFAULT 'demarches_simplifiees',
	status             TEXT NOT NULL,
	email              TEXT,
	payload            JSONB,
	activity           TEXT,
	errors             JSONB,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (application_id, source_id)
);

CREATE TABLE IF NOT EXISTS bank_informations (
	application_id                  INTEGER PRIMARY KEY,
	siren                           TEXT,
	siret                           TEXT,
	venue_name                      TEXT,
	iban                            TEXT,
	bic                             TEXT,
	status                          TEXT NOT NULL,
	date_modified_at_last_provider  TIMESTAMPTZ NOT NULL
);`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pooled connection. The pool dials lazily; use Ping to
// check reachability.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// EnsureSchema creates the import tables when they are missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
