package dispatch

import (
	"context"

	"gitlab.com/toolmesh.dev/internal/domain"
)

// IDispatchService is the control-plane entry point for tool execution: it
// resolves tool descriptors, runs them through the remote execution runtime
// and records the outcome.
type IDispatchService interface {
	// RegisterTool declares a dispatchable tool and its capability needs
	RegisterTool(spec domain.ToolSpec)

	// ExecuteTool runs a registered tool. Unknown tool names are a caller
	// error; dispatch failures come back inside the result.
	ExecuteTool(ctx context.Context, toolName string, params map[string]interface{}, execCtx *domain.ExecutionContext) (*domain.ExecutionResult, error)

	// GetRecentExecutions returns recorded outcomes, newest first
	GetRecentExecutions(ctx context.Context, limit int) ([]*domain.ExecutionRecord, error)
}
