package secondary

import (
	"context"

	"gitlab.com/toolmesh.dev/internal/domain"
)

// WorkerMirror mirrors pool registrations into shared discovery storage so
// a restarted dispatcher can reseed its in-memory pool. The mirror is
// advisory; the pool manager stays authoritative.
type WorkerMirror interface {
	// SaveWorker writes the worker's current record
	SaveWorker(ctx context.Context, worker *domain.WorkerRecord) error

	// RemoveWorker deletes the worker's record
	RemoveWorker(ctx context.Context, workerID string) error

	// LoadWorkers retrieves every mirrored worker record
	LoadWorkers(ctx context.Context) ([]*domain.WorkerRecord, error)
}
