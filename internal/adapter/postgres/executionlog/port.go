// package postgres contains PostgreSQL implementations of repositories
package executionlog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/ports/secondary"
	"gitlab.com/toolmesh.dev/internal/domain"
)

var _ secondary.ExecutionHistoryRepository = &Repository{}

// Repository implements the ExecutionHistoryRepository port with PostgreSQL
type Repository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewRepository creates a new PostgreSQL execution history repository
func NewRepository(db *sqlx.DB, logger primary.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// SaveExecution records one dispatch outcome
func (r *Repository) SaveExecution(ctx context.Context, record *domain.ExecutionRecord) error {
	query := `
		INSERT INTO tool_executions (
			id, tool_name, worker_id, session_id, success,
			output, error, attempts, duration_seconds, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.ToolName,
		record.WorkerID,
		record.SessionID,
		record.Success,
		record.Output,
		record.Error,
		record.Attempts,
		record.DurationSec,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save execution record", "error", err)
		return fmt.Errorf("failed to save execution record: %w", err)
	}
	return nil
}

// GetRecentExecutions returns the most recent outcomes, newest first
func (r *Repository) GetRecentExecutions(ctx context.Context, limit int) ([]*domain.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, tool_name, worker_id, session_id, success,
			   output, error, attempts, duration_seconds, created_at
		FROM tool_executions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to query execution records", "error", err)
		return nil, fmt.Errorf("failed to query execution records: %w", err)
	}
	defer rows.Close()

	var records []*domain.ExecutionRecord
	for rows.Next() {
		var record domain.ExecutionRecord
		if err := rows.StructScan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate execution records: %w", err)
	}
	return records, nil
}
