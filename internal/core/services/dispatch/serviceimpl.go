package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/ports/secondary"
	"gitlab.com/toolmesh.dev/internal/core/services/execution"
	"gitlab.com/toolmesh.dev/internal/domain"
	"gitlab.com/toolmesh.dev/internal/static/errs"
)

var _ IDispatchService = &DispatchService{}

// DispatchService wraps the remote execution runtime with a tool registry
// and best-effort history recording.
type DispatchService struct {
	mu      sync.RWMutex
	tools   map[string]domain.ToolSpec
	runtime execution.IRemoteExecutionService
	history secondary.ExecutionHistoryRepository
	logger  primary.Logger
}

// NewDispatchService creates the dispatch service. The history repository
// may be nil when no database is configured.
func NewDispatchService(runtime execution.IRemoteExecutionService, history secondary.ExecutionHistoryRepository, logger primary.Logger) *DispatchService {
	return &DispatchService{
		tools:   make(map[string]domain.ToolSpec),
		runtime: runtime,
		history: history,
		logger:  logger,
	}
}

// RegisterTool declares a dispatchable tool and its capability needs
func (s *DispatchService) RegisterTool(spec domain.ToolSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[spec.ToolName] = spec
}

// ExecuteTool runs a registered tool through the runtime and records the
// outcome. History failures are logged, never surfaced.
func (s *DispatchService) ExecuteTool(ctx context.Context, toolName string, params map[string]interface{}, execCtx *domain.ExecutionContext) (*domain.ExecutionResult, error) {
	s.mu.RLock()
	spec, ok := s.tools[toolName]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.UnknownTool, toolName)
	}

	result := s.runtime.Execute(ctx, spec, params, execCtx)
	s.recordExecution(ctx, toolName, execCtx, result)
	return result, nil
}

// GetRecentExecutions returns recorded outcomes, newest first
func (s *DispatchService) GetRecentExecutions(ctx context.Context, limit int) ([]*domain.ExecutionRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	records, err := s.history.GetRecentExecutions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent executions: %w", err)
	}
	return records, nil
}

func (s *DispatchService) recordExecution(ctx context.Context, toolName string, execCtx *domain.ExecutionContext, result *domain.ExecutionResult) {
	if s.history == nil {
		return
	}

	record := &domain.ExecutionRecord{
		ID:          uuid.New(),
		ToolName:    toolName,
		Success:     result.Success,
		DurationSec: result.ExecutionTimeSeconds,
		CreatedAt:   time.Now(),
	}
	if execCtx != nil {
		record.SessionID = execCtx.SessionID
	}
	if result.Output != "" {
		output := result.Output
		record.Output = &output
	}
	if result.Error != "" {
		errMsg := result.Error
		record.Error = &errMsg
	}
	if workerID, ok := result.Metadata["worker_id"].(string); ok {
		record.WorkerID = &workerID
	}
	if attempts, ok := result.Metadata["attempt"].(int); ok {
		record.Attempts = attempts
	} else if attempts, ok := result.Metadata["attempts"].(int); ok {
		record.Attempts = attempts
	}

	if err := s.history.SaveExecution(ctx, record); err != nil {
		s.logger.Warn("Failed to record execution", "tool", toolName, "error", err)
	}
}
