package pool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gitlab.com/toolmesh.dev/internal/config"
	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/services/balance"
	"gitlab.com/toolmesh.dev/internal/domain"
	"gitlab.com/toolmesh.dev/internal/static/errs"
)

var _ IWorkerPoolService = &WorkerPoolService{}

// WorkerPoolService is the in-memory worker pool manager. The mutex guards
// the worker map and every record inside it; critical sections are short and
// never perform network I/O.
type WorkerPoolService struct {
	mu      sync.Mutex
	workers map[string]*domain.WorkerRecord

	strategy          balance.Strategy
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration

	cancelMonitor context.CancelFunc
	logger        primary.Logger
}

// NewWorkerPoolService creates a pool manager. An unknown strategy name in
// the config is a construction-time error.
func NewWorkerPoolService(cfg *config.PoolConfig, logger primary.Logger) (*WorkerPoolService, error) {
	strategy, err := balance.NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to build worker pool: %w", err)
	}
	return &WorkerPoolService{
		workers:           make(map[string]*domain.WorkerRecord),
		strategy:          strategy,
		heartbeatInterval: cfg.HeartbeatInterval,
		heartbeatTimeout:  cfg.HeartbeatTimeout,
		logger:            logger,
	}, nil
}

// RegisterWorker adds a worker to the pool, stamping its heartbeat and
// marking it available. Re-registering an existing id overwrites it.
func (s *WorkerPoolService) RegisterWorker(worker *domain.WorkerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if worker.MaxConcurrent <= 0 {
		worker.MaxConcurrent = domain.DefaultMaxConcurrent
	}
	worker.LastHeartbeat = time.Now()
	worker.Status = domain.WorkerStatusAvailable
	s.workers[worker.ID] = worker

	s.logger.Info("Worker registered", "workerId", worker.ID, "endpoint", worker.Endpoint(), "capabilities", worker.Capabilities)
}

// UnregisterWorker removes a worker; no-op if absent
func (s *WorkerPoolService) UnregisterWorker(workerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workers[workerID]; !ok {
		return
	}
	delete(s.workers, workerID)
	s.logger.Info("Worker unregistered", "workerId", workerID)
}

// SelectWorker filters, delegates to the strategy and reserves capacity, all
// inside one critical section so concurrent selections cannot push a worker
// past its ceiling. Candidates are ordered by id to keep list-order
// tie-breaks stable across map iterations.
func (s *WorkerPoolService) SelectWorker(requiredCapabilities []string, exclude []string) *domain.WorkerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	candidates := make([]*domain.WorkerRecord, 0, len(s.workers))
	for _, w := range s.workers {
		if _, skip := excluded[w.ID]; skip {
			continue
		}
		if !w.IsAvailable() {
			continue
		}
		if len(requiredCapabilities) > 0 && !w.HasAllCapabilities(requiredCapabilities) {
			continue
		}
		candidates = append(candidates, w)
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	chosen := s.strategy.Select(candidates)
	if chosen == nil {
		return nil
	}
	chosen.CurrentLoad++
	return chosen.Clone()
}

// ReleaseWorker returns one unit of capacity, clamped at zero
func (s *WorkerPoolService) ReleaseWorker(workerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workers[workerID]
	if !ok {
		return
	}
	if w.CurrentLoad > 0 {
		w.CurrentLoad--
	}
}

// MarkWorkerFailed takes the worker offline and counts the failure
func (s *WorkerPoolService) MarkWorkerFailed(workerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workers[workerID]
	if !ok {
		return
	}
	w.Status = domain.WorkerStatusOffline
	w.FailedExecutions++
	s.logger.Warn("Worker marked failed", "workerId", workerID, "failedExecutions", w.FailedExecutions)
}

// RecordExecution counts one completed execution on the worker
func (s *WorkerPoolService) RecordExecution(workerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.workers[workerID]; ok {
		w.TotalExecutions++
	}
}

// UpdateHeartbeat refreshes liveness; an offline worker self-heals back to
// available on its next heartbeat.
func (s *WorkerPoolService) UpdateHeartbeat(workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workers[workerID]
	if !ok {
		return fmt.Errorf("%w: %s", errs.WorkerNotFound, workerID)
	}
	w.LastHeartbeat = time.Now()
	if w.Status == domain.WorkerStatusOffline {
		w.Status = domain.WorkerStatusAvailable
		s.logger.Info("Worker back online", "workerId", workerID)
	}
	return nil
}

// HasAvailableWorkers reports whether any worker can accept work
func (s *WorkerPoolService) HasAvailableWorkers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.workers {
		if w.IsAvailable() {
			return true
		}
	}
	return false
}

// GetWorker returns a snapshot copy of one worker
func (s *WorkerPoolService) GetWorker(workerID string) (*domain.WorkerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workers[workerID]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// ListWorkers returns snapshot copies of every worker, ordered by id
func (s *WorkerPoolService) ListWorkers() []*domain.WorkerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := make([]*domain.WorkerRecord, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w.Clone())
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers
}

// GetWorkerStats returns aggregate pool counters
func (s *WorkerPoolService) GetWorkerStats() PoolStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := PoolStats{TotalWorkers: len(s.workers)}
	for _, w := range s.workers {
		switch {
		case w.IsAvailable():
			stats.AvailableWorkers++
		case w.Status == domain.WorkerStatusAvailable || w.Status == domain.WorkerStatusBusy:
			stats.BusyWorkers++
		case w.Status == domain.WorkerStatusOffline:
			stats.OfflineWorkers++
		}
		stats.TotalLoad += w.CurrentLoad
		stats.TotalExecutions += w.TotalExecutions
		stats.FailedExecutions += w.FailedExecutions
	}
	return stats
}

// StartHealthMonitor launches the background sweep. Calling it again
// restarts the monitor.
func (s *WorkerPoolService) StartHealthMonitor(ctx context.Context) {
	s.StopHealthMonitor()
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancelMonitor = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepStaleWorkers()
			}
		}
	}()
}

// StopHealthMonitor stops the background sweep; idempotent
func (s *WorkerPoolService) StopHealthMonitor() {
	s.mu.Lock()
	cancel := s.cancelMonitor
	s.cancelMonitor = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// sweepStaleWorkers takes workers offline when their last heartbeat is
// strictly older than the timeout window
func (s *WorkerPoolService) sweepStaleWorkers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, w := range s.workers {
		if w.Status == domain.WorkerStatusOffline {
			continue
		}
		if now.Sub(w.LastHeartbeat) > s.heartbeatTimeout {
			w.Status = domain.WorkerStatusOffline
			s.logger.Warn("Worker heartbeat stale, marking offline", "workerId", w.ID, "lastHeartbeat", w.LastHeartbeat)
		}
	}
}
