package repository

import (
	"context"
	"fmt"
	"time"

	"carvalue/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DefaultHistoryLimit is used when callers ask for a non-positive number of rows
const DefaultHistoryLimit = 20

// MaxHistoryLimit caps a single history page
const MaxHistoryLimit = 100

const schema = `
CREATE TABLE IF NOT EXISTS valuation_logs (
	id               BIGSERIAL PRIMARY KEY,
	source           TEXT        NOT NULL,
	make             TEXT        NOT NULL,
	model            TEXT        NOT NULL,
	year             TEXT        NOT NULL,
	mileage          TEXT        NOT NULL,
	condition        TEXT        NOT NULL,
	additional_info  TEXT,
	provider         TEXT        NOT NULL,
	succeeded        BOOLEAN     NOT NULL,
	valuation        TEXT        NOT NULL,
	response_time_ms INTEGER     NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_valuation_logs_created_at ON valuation_logs (created_at DESC);
`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the valuation log table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LogValuation records one valuation attempt
func (r *PostgresRepository) LogValuation(ctx context.Context, rec *model.ValuationRecord) error {
	query := `
		INSERT INTO valuation_logs (source, make, model, year, mileage, condition,
			additional_info, provider, succeeded, valuation, response_time_ms)
		VALUES (:source, :make, :model, :year, :mileage, :condition,
			:additional_info, :provider, :succeeded, :valuation, :response_time_ms)
	`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to log valuation: %w", err)
	}
	return nil
}

// RecentValuations returns the newest valuation attempts first
func (r *PostgresRepository) RecentValuations(ctx context.Context, limit int) ([]model.ValuationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	query := `
		SELECT
			id, source, make, model, year, mileage, condition, additional_info,
			provider, succeeded, valuation, response_time_ms, created_at
		FROM valuation_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	records := []model.ValuationRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch valuations: %w", err)
	}
	return records, nil
}
