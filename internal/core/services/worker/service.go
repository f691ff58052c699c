package worker

import (
	"context"

	"gitlab.com/toolmesh.dev/internal/core/services/pool"
	"gitlab.com/toolmesh.dev/internal/domain"
)

// IWorkerRegistrationService defines the interface for worker registration
type IWorkerRegistrationService interface {
	// RegisterWorker adds a worker to the pool and mirrors the registration
	RegisterWorker(ctx context.Context, worker *domain.WorkerRecord) error

	// UnregisterWorker removes a worker from the pool and the mirror
	UnregisterWorker(ctx context.Context, workerID string) error

	// Heartbeat refreshes the worker's liveness timestamp
	Heartbeat(ctx context.Context, workerID string) error

	// GetAllWorkers returns a snapshot of every registered worker
	GetAllWorkers(ctx context.Context) []*domain.WorkerRecord

	// GetPoolStats returns aggregate pool counters
	GetPoolStats(ctx context.Context) pool.PoolStats

	// RestoreWorkers reseeds the pool from the mirror at startup
	RestoreWorkers(ctx context.Context) error
}
