package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewExecutionResultInvariant(t *testing.T) {
	// failure with a populated error is fine
	r, err := NewExecutionResult(false, "", "worker exploded", 1.5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Success || r.Error != "worker exploded" {
		t.Errorf("unexpected result %+v", r)
	}

	// success carrying an error must be rejected at construction
	if _, err := NewExecutionResult(true, "ok", "boom", 0, nil); !errors.Is(err, ErrResultSuccessWithError) {
		t.Errorf("expected ErrResultSuccessWithError, got %v", err)
	}

	// failure without an error must be rejected too
	if _, err := NewExecutionResult(false, "", "", 0, nil); !errors.Is(err, ErrResultFailureWithoutError) {
		t.Errorf("expected ErrResultFailureWithoutError, got %v", err)
	}
}

func TestFailureResultNeverEmptyError(t *testing.T) {
	r := NewFailureResult("", 0, nil)
	if r.Success {
		t.Error("failure result marked success")
	}
	if r.Error == "" {
		t.Error("failure result must carry an error message")
	}
}

func TestExecutionContextTimeout(t *testing.T) {
	def := 60 * time.Second

	var nilCtx *ExecutionContext
	if got := nilCtx.TimeoutOrDefault(def); got != def {
		t.Errorf("nil context should use default, got %v", got)
	}

	c := &ExecutionContext{TimeoutSec: 0.5}
	if got := c.TimeoutOrDefault(def); got != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", got)
	}

	c.TimeoutSec = 0
	if got := c.TimeoutOrDefault(def); got != def {
		t.Errorf("unset timeout should use default, got %v", got)
	}
}
