package pool

import (
	"context"

	"gitlab.com/toolmesh.dev/internal/domain"
)

// PoolStats is an aggregate, point-in-time view of the worker pool
type PoolStats struct {
	TotalWorkers     int   `json:"total_workers"`
	AvailableWorkers int   `json:"available_workers"`
	BusyWorkers      int   `json:"busy_workers"`
	OfflineWorkers   int   `json:"offline_workers"`
	TotalLoad        int   `json:"total_load"`
	TotalExecutions  int64 `json:"total_executions"`
	FailedExecutions int64 `json:"failed_executions"`
}

// IWorkerPoolService owns every worker record and serializes all state
// transitions through one lock. It is the only component allowed to mutate
// worker counters.
type IWorkerPoolService interface {
	// RegisterWorker adds a worker to the pool, stamping its heartbeat and
	// marking it available. Re-registering an existing id overwrites it.
	RegisterWorker(worker *domain.WorkerRecord)

	// UnregisterWorker removes a worker; no-op if absent
	UnregisterWorker(workerID string)

	// SelectWorker picks an available worker matching the required
	// capabilities and not in the exclusion list, reserving one unit of its
	// capacity atomically with the choice. Returns a snapshot copy, or nil
	// when no worker is currently usable.
	SelectWorker(requiredCapabilities []string, exclude []string) *domain.WorkerRecord

	// ReleaseWorker returns one unit of capacity, clamped at zero so a
	// duplicate release cannot corrupt pool accounting
	ReleaseWorker(workerID string)

	// MarkWorkerFailed takes the worker offline and counts the failure.
	// It does not touch the worker's load; callers release separately.
	MarkWorkerFailed(workerID string)

	// RecordExecution counts one completed execution on the worker
	RecordExecution(workerID string)

	// UpdateHeartbeat refreshes the worker's liveness timestamp, bringing an
	// offline worker back to available
	UpdateHeartbeat(workerID string) error

	// HasAvailableWorkers reports whether any worker can accept work
	HasAvailableWorkers() bool

	// GetWorker returns a snapshot copy of one worker
	GetWorker(workerID string) (*domain.WorkerRecord, bool)

	// ListWorkers returns snapshot copies of every worker, ordered by id
	ListWorkers() []*domain.WorkerRecord

	// GetWorkerStats returns aggregate pool counters
	GetWorkerStats() PoolStats

	// StartHealthMonitor launches the background sweep that takes workers
	// offline when their heartbeat goes stale. Cancelled via the context or
	// StopHealthMonitor.
	StartHealthMonitor(ctx context.Context)

	// StopHealthMonitor stops the background sweep; idempotent
	StopHealthMonitor()
}
