// Package db provides PostgreSQL persistence for keyword runs. Persistence
// is optional: the pipeline runs fully without a database and treats save
// failures as warnings.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helio/keyword-mapper/internal/types"
)

// Run statuses recorded in pipeline_runs.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun records the start of a keyword run and returns its ID.
func (db *DB) CreateRun(ctx context.Context, request types.SearchRequest) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pipeline_runs (target_role, area, base_location, work_mode, desired_count, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		request.TargetRole, request.Area, request.BaseLocation, string(request.WorkMode), request.DesiredCount, StatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run finished with the given status.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveKeywordMap stores the final ranked keyword map for a run.
func (db *DB) SaveKeywordMap(ctx context.Context, runID uuid.UUID, result types.RankedKeywordMap) error {
	content, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal keyword map: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO keyword_maps (run_id, postings_analyzed, unique_terms, model_used, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_id) DO UPDATE SET
		   postings_analyzed = $2, unique_terms = $3, model_used = $4, content = $5, created_at = NOW()`,
		runID, result.PostingsAnalyzed, result.UniqueTerms, result.ModelUsed, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save keyword map: %w", err)
	}
	return nil
}

// SaveAudit stores the collection audit trail for a run.
func (db *DB) SaveAudit(ctx context.Context, runID uuid.UUID, audit types.RunMetadata) error {
	content, err := json.Marshal(audit)
	if err != nil {
		return fmt.Errorf("failed to marshal audit: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_audits (run_id, combinations, deduplicated, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id) DO UPDATE SET
		   combinations = $2, deduplicated = $3, content = $4, created_at = NOW()`,
		runID, len(audit.Combinations), audit.Deduplicated, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit: %w", err)
	}
	return nil
}
