package secondary

import (
	"context"

	"gitlab.com/toolmesh.dev/internal/domain"
)

// ExecutionHistoryRepository persists dispatch outcomes for auditing
type ExecutionHistoryRepository interface {
	// SaveExecution records one dispatch outcome
	SaveExecution(ctx context.Context, record *domain.ExecutionRecord) error

	// GetRecentExecutions returns the most recent outcomes, newest first
	GetRecentExecutions(ctx context.Context, limit int) ([]*domain.ExecutionRecord, error)
}
