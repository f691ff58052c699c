package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ExecutionContext is the resource envelope forwarded verbatim to the worker
// alongside each tool execution request. Timeout is expressed in seconds on
// the wire.
type ExecutionContext struct {
	SessionID        string            `json:"session_id"`
	TimeoutSec       float64           `json:"timeout"`
	MaxMemoryMB      int               `json:"max_memory_mb"`
	MaxCPUPercent    int               `json:"max_cpu_percent"`
	AllowedNetwork   bool              `json:"allowed_network"`
	WorkingDirectory string            `json:"working_directory"`
	Environment      map[string]string `json:"environment"`
}

// TimeoutOrDefault returns the envelope's per-call timeout, falling back to
// the given default when the envelope does not specify one.
func (c *ExecutionContext) TimeoutOrDefault(def time.Duration) time.Duration {
	if c == nil || c.TimeoutSec <= 0 {
		return def
	}
	return time.Duration(c.TimeoutSec * float64(time.Second))
}

var (
	// ErrResultSuccessWithError rejects a success result carrying an error message
	ErrResultSuccessWithError = errors.New("success result must not carry an error")
	// ErrResultFailureWithoutError rejects a failure result without an error message
	ErrResultFailureWithoutError = errors.New("failure result must carry an error")
)

// ExecutionResult is the outcome of one tool execution. The success/error
// invariant is enforced at construction: success results never carry an
// error message, failure results always do.
type ExecutionResult struct {
	Success              bool                   `json:"success"`
	Output               string                 `json:"output,omitempty"`
	Error                string                 `json:"error,omitempty"`
	ExecutionTimeSeconds float64                `json:"execution_time_seconds"`
	Metadata             map[string]interface{} `json:"metadata,omitempty"`
}

// NewExecutionResult builds a result, rejecting combinations that violate
// the success/error invariant.
func NewExecutionResult(success bool, output, errMsg string, elapsed float64, metadata map[string]interface{}) (*ExecutionResult, error) {
	if success && errMsg != "" {
		return nil, ErrResultSuccessWithError
	}
	if !success && errMsg == "" {
		return nil, ErrResultFailureWithoutError
	}
	return &ExecutionResult{
		Success:              success,
		Output:               output,
		Error:                errMsg,
		ExecutionTimeSeconds: elapsed,
		Metadata:             metadata,
	}, nil
}

// NewSuccessResult builds a successful result
func NewSuccessResult(output string, elapsed float64, metadata map[string]interface{}) *ExecutionResult {
	return &ExecutionResult{
		Success:              true,
		Output:               output,
		ExecutionTimeSeconds: elapsed,
		Metadata:             metadata,
	}
}

// NewFailureResult builds a failed result; an empty message is replaced so
// the invariant holds even on sloppy call sites.
func NewFailureResult(errMsg string, elapsed float64, metadata map[string]interface{}) *ExecutionResult {
	if errMsg == "" {
		errMsg = "unknown error"
	}
	return &ExecutionResult{
		Success:              false,
		Error:                errMsg,
		ExecutionTimeSeconds: elapsed,
		Metadata:             metadata,
	}
}

// ExecutionRecord is one persisted dispatch outcome
type ExecutionRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ToolName    string    `db:"tool_name" json:"tool_name"`
	WorkerID    *string   `db:"worker_id" json:"worker_id,omitempty"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Success     bool      `db:"success" json:"success"`
	Output      *string   `db:"output" json:"output,omitempty"`
	Error       *string   `db:"error" json:"error,omitempty"`
	Attempts    int       `db:"attempts" json:"attempts"`
	DurationSec float64   `db:"duration_seconds" json:"duration_seconds"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
