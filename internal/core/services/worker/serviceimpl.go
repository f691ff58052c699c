package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/ports/secondary"
	"gitlab.com/toolmesh.dev/internal/core/services/pool"
	"gitlab.com/toolmesh.dev/internal/domain"
)

var _ IWorkerRegistrationService = &WorkerRegistrationService{}

// WorkerRegistrationService fronts the pool manager for the control plane
// and write-throughs registrations to the mirror. Mirror failures are logged
// and never fail the in-memory operation.
type WorkerRegistrationService struct {
	pool   pool.IWorkerPoolService
	mirror secondary.WorkerMirror
	logger primary.Logger
}

// NewWorkerRegistrationService creates a new worker registration service.
// The mirror may be nil when no shared storage is configured.
func NewWorkerRegistrationService(poolSvc pool.IWorkerPoolService, mirror secondary.WorkerMirror, logger primary.Logger) *WorkerRegistrationService {
	return &WorkerRegistrationService{
		pool:   poolSvc,
		mirror: mirror,
		logger: logger,
	}
}

// RegisterWorker adds a worker to the pool and mirrors the registration.
// A missing id is filled with a generated one.
func (s *WorkerRegistrationService) RegisterWorker(ctx context.Context, worker *domain.WorkerRecord) error {
	if worker.ID == "" {
		worker.ID = uuid.New().String()
	}
	if worker.Host == "" || worker.Port <= 0 {
		return fmt.Errorf("worker %s has no usable endpoint", worker.ID)
	}

	s.pool.RegisterWorker(worker)
	s.mirrorSave(ctx, worker.ID)
	return nil
}

// UnregisterWorker removes a worker from the pool and the mirror
func (s *WorkerRegistrationService) UnregisterWorker(ctx context.Context, workerID string) error {
	s.pool.UnregisterWorker(workerID)
	if s.mirror != nil {
		if err := s.mirror.RemoveWorker(ctx, workerID); err != nil {
			s.logger.Warn("Failed to remove worker from mirror", "workerId", workerID, "error", err)
		}
	}
	return nil
}

// Heartbeat refreshes the worker's liveness timestamp
func (s *WorkerRegistrationService) Heartbeat(ctx context.Context, workerID string) error {
	s.logger.Debug("Received worker heartbeat", "workerId", workerID)

	if err := s.pool.UpdateHeartbeat(workerID); err != nil {
		return err
	}
	s.mirrorSave(ctx, workerID)
	return nil
}

// GetAllWorkers returns a snapshot of every registered worker
func (s *WorkerRegistrationService) GetAllWorkers(ctx context.Context) []*domain.WorkerRecord {
	return s.pool.ListWorkers()
}

// GetPoolStats returns aggregate pool counters
func (s *WorkerRegistrationService) GetPoolStats(ctx context.Context) pool.PoolStats {
	return s.pool.GetWorkerStats()
}

// RestoreWorkers reseeds the pool from the mirror at startup
func (s *WorkerRegistrationService) RestoreWorkers(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	workers, err := s.mirror.LoadWorkers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load mirrored workers: %w", err)
	}
	for _, w := range workers {
		w.CurrentLoad = 0
		s.pool.RegisterWorker(w)
	}
	if len(workers) > 0 {
		s.logger.Info("Restored workers from mirror", "count", len(workers))
	}
	return nil
}

// mirrorSave writes the worker's current pool snapshot to the mirror
func (s *WorkerRegistrationService) mirrorSave(ctx context.Context, workerID string) {
	if s.mirror == nil {
		return
	}
	snapshot, ok := s.pool.GetWorker(workerID)
	if !ok {
		return
	}
	if err := s.mirror.SaveWorker(ctx, snapshot); err != nil {
		s.logger.Warn("Failed to mirror worker", "workerId", workerID, "error", err)
	}
}
