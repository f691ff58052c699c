package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gitlab.com/toolmesh.dev/internal/config"
	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/services/pool"
	"gitlab.com/toolmesh.dev/internal/domain"
)

var _ IRemoteExecutionService = &RemoteExecutionService{}

// RemoteExecutionService is the retrying dispatcher. Worker selection and
// capacity accounting go through the pool manager; the HTTP round-trip runs
// outside the pool lock.
type RemoteExecutionService struct {
	pool          pool.IWorkerPoolService
	client        *http.Client
	timeout       time.Duration
	retryAttempts int
	retryDelay    time.Duration
	logger        primary.Logger
	shutdownOnce  sync.Once
}

// NewRemoteExecutionService creates the dispatcher from runtime config
func NewRemoteExecutionService(poolSvc pool.IWorkerPoolService, cfg *config.RuntimeConfig, logger primary.Logger) *RemoteExecutionService {
	return &RemoteExecutionService{
		pool:          poolSvc,
		client:        &http.Client{},
		timeout:       cfg.Timeout,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		logger:        logger,
	}
}

// executeRequest is the wire payload POSTed to a worker's /execute endpoint
type executeRequest struct {
	ToolName   string                   `json:"tool_name"`
	Parameters map[string]interface{}   `json:"parameters"`
	Context    *domain.ExecutionContext `json:"context"`
}

// executeResponse is the worker's reply body on HTTP 200
type executeResponse struct {
	Success bool    `json:"success"`
	Output  *string `json:"output"`
	Error   *string `json:"error"`
}

// Execute runs the tool on a worker matching its required capabilities,
// retrying on a different worker after a dispatch failure. Pool exhaustion
// is surfaced immediately; retrying against an unchanged pool is pointless.
func (s *RemoteExecutionService) Execute(ctx context.Context, tool domain.ToolDescriptor, params map[string]interface{}, execCtx *domain.ExecutionContext) *domain.ExecutionResult {
	required := tool.RequiredCapabilities()

	var excluded []string
	var lastErr string
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		chosen := s.pool.SelectWorker(required, excluded)
		if chosen == nil {
			s.logger.Warn("No available workers", "tool", tool.Name(), "attempt", attempt+1, "excluded", len(excluded))
			return domain.NewFailureResult(
				fmt.Sprintf("No available workers for tool '%s'", tool.Name()),
				0,
				map[string]interface{}{"attempts": attempt},
			)
		}

		result, timedOut, err := s.dispatch(ctx, chosen, tool.Name(), params, execCtx)
		if err == nil {
			result.Metadata["attempt"] = attempt + 1
			return result
		}

		lastErr = err.Error()
		s.pool.MarkWorkerFailed(chosen.ID)
		excluded = append(excluded, chosen.ID)
		s.logger.Warn("Dispatch failed", "tool", tool.Name(), "workerId", chosen.ID, "attempt", attempt+1, "error", err)

		if attempt+1 < s.retryAttempts && timedOut {
			backoff := s.retryDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return domain.NewFailureResult(
					fmt.Sprintf("tool execution cancelled: %v", ctx.Err()),
					0,
					map[string]interface{}{"attempts": attempt + 1},
				)
			case <-time.After(backoff):
			}
		}
	}

	return domain.NewFailureResult(
		fmt.Sprintf("tool execution failed after %d attempts: %s", s.retryAttempts, lastErr),
		0,
		map[string]interface{}{"attempts": s.retryAttempts},
	)
}

// dispatch performs one HTTP round-trip against the chosen worker. The
// worker's capacity unit is released on every path, including transport
// errors; a successful round-trip also bumps the worker's execution count.
// timedOut reports whether the failure was a per-call deadline expiry.
func (s *RemoteExecutionService) dispatch(ctx context.Context, worker *domain.WorkerRecord, toolName string, params map[string]interface{}, execCtx *domain.ExecutionContext) (result *domain.ExecutionResult, timedOut bool, err error) {
	defer s.pool.ReleaseWorker(worker.ID)

	payload, err := json.Marshal(executeRequest{
		ToolName:   toolName,
		Parameters: params,
		Context:    execCtx,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, execCtx.TimeoutOrDefault(s.timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, worker.Endpoint()+"/execute", bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return nil, true, fmt.Errorf("execution timed out on worker %s: %w", worker.ID, err)
		}
		return nil, false, fmt.Errorf("failed to reach worker %s: %w", worker.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("worker %s returned status %d", worker.ID, resp.StatusCode)
	}

	var body executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("failed to decode response from worker %s: %w", worker.ID, err)
	}

	elapsed := time.Since(start).Seconds()
	s.pool.RecordExecution(worker.ID)

	metadata := map[string]interface{}{"worker_id": worker.ID}
	if body.Success {
		return domain.NewSuccessResult(deref(body.Output), elapsed, metadata), false, nil
	}
	return domain.NewFailureResult(deref(body.Error), elapsed, metadata), false, nil
}

// HealthCheck reports whether any worker can currently accept work
func (s *RemoteExecutionService) HealthCheck() bool {
	return s.pool.HasAvailableWorkers()
}

// Shutdown closes the held HTTP connection pool; idempotent
func (s *RemoteExecutionService) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.client.CloseIdleConnections()
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
