// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"site-composer/internal/common/config"

	_ "github.com/lib/pq"
)

// schemaStatements create the tables the site and override stores read and write.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sites (
		id               TEXT PRIMARY KEY,
		business_profile JSONB NOT NULL DEFAULT '{}'::jsonb,
		sections         JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS variant_overrides (
		id             UUID PRIMARY KEY,
		site_id        TEXT NOT NULL,
		section_type   TEXT NOT NULL,
		variant_number SMALLINT NOT NULL CHECK (variant_number BETWEEN 1 AND 5),
		is_override    BOOLEAN NOT NULL,
		selected_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_variant_overrides_site ON variant_overrides (site_id, selected_at)`,
}

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
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

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Migrate creates the composer tables if they do not exist yet.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
