package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/content-governance/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema. The schema is fixed and
// versioned here: repositories never introspect columns at runtime.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Tenants table
		CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Content items table
		CREATE TABLE IF NOT EXISTS content_items (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			title VARCHAR(500) NOT NULL,
			state VARCHAR(50) NOT NULL CHECK (state IN (
				'INGESTED', 'CLASSIFIED', 'SELECTED', 'RESEARCHED',
				'DRAFTED', 'VALIDATED', 'PENDING_APPROVAL',
				'READY_TO_PUBLISH', 'PUBLISHED', 'DEFERRED', 'RETIRED'
			)),
			risk VARCHAR(20) NOT NULL CHECK (risk IN ('TIER_1', 'TIER_2', 'TIER_3')),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Events table (append-only audit trail)
		CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			entity_type VARCHAR(100) NOT NULL,
			entity_id UUID NOT NULL,
			event_type VARCHAR(100) NOT NULL,
			actor_type VARCHAR(50) NOT NULL,
			actor_id VARCHAR(255),
			payload JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Provenance events table (lineage metadata)
		CREATE TABLE IF NOT EXISTS provenance_events (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			content_id UUID REFERENCES content_items(id) ON DELETE SET NULL,
			agent_name VARCHAR(255) NOT NULL,
			model_name VARCHAR(255) NOT NULL,
			input_hash VARCHAR(128),
			output_hash VARCHAR(128),
			status VARCHAR(50) NOT NULL,
			details JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_content_items_tenant_id ON content_items(tenant_id);
		CREATE INDEX IF NOT EXISTS idx_content_items_tenant_state ON content_items(tenant_id, state);
		CREATE INDEX IF NOT EXISTS idx_content_items_tenant_created ON content_items(tenant_id, created_at);

		CREATE INDEX IF NOT EXISTS idx_events_tenant_entity_time ON events(tenant_id, entity_type, entity_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_events_event_type ON events(event_type);

		CREATE INDEX IF NOT EXISTS idx_provenance_events_tenant_id ON provenance_events(tenant_id);
		CREATE INDEX IF NOT EXISTS idx_provenance_events_content_id ON provenance_events(content_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
