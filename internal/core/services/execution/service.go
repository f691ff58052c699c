package execution

import (
	"context"

	"gitlab.com/toolmesh.dev/internal/domain"
)

// IRemoteExecutionService dispatches tool executions to pool workers over
// HTTP, retrying on a different worker when one fails.
type IRemoteExecutionService interface {
	// Execute runs the tool on a worker matching its required capabilities.
	// Failures inside a worker interaction never escape as errors; every
	// outcome is folded into the returned result.
	Execute(ctx context.Context, tool domain.ToolDescriptor, params map[string]interface{}, execCtx *domain.ExecutionContext) *domain.ExecutionResult

	// HealthCheck reports whether any worker can currently accept work
	HealthCheck() bool

	// Shutdown closes the held HTTP connection pool; idempotent
	Shutdown()
}
