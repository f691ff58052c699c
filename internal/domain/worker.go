package domain

import (
	"fmt"
	"time"
)

// DefaultMaxConcurrent is the capacity ceiling applied to workers that
// register without declaring one.
const DefaultMaxConcurrent = 5

// WorkerStatus represents the lifecycle state of a remote worker
type WorkerStatus string

const (
	WorkerStatusAvailable WorkerStatus = "AVAILABLE"
	WorkerStatusBusy      WorkerStatus = "BUSY"
	WorkerStatusOffline   WorkerStatus = "OFFLINE"
	WorkerStatusDraining  WorkerStatus = "DRAINING"
)

// WorkerRecord represents one remote executor known to the pool.
// Mutable fields (status, load, heartbeat, counters) are owned by the pool
// manager; read them only under its lock or from a snapshot copy.
type WorkerRecord struct {
	ID               string       `json:"id"`
	Host             string       `json:"host"`
	Port             int          `json:"port"`
	Capabilities     []string     `json:"capabilities"`
	MaxConcurrent    int          `json:"max_concurrent"`
	Status           WorkerStatus `json:"status"`
	CurrentLoad      int          `json:"current_load"`
	LastHeartbeat    time.Time    `json:"last_heartbeat"`
	TotalExecutions  int64        `json:"total_executions"`
	FailedExecutions int64        `json:"failed_executions"`
}

// NewWorkerRecord creates a worker record with defaults applied
func NewWorkerRecord(id, host string, port int, capabilities []string, maxConcurrent int) *WorkerRecord {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &WorkerRecord{
		ID:            id,
		Host:          host,
		Port:          port,
		Capabilities:  capabilities,
		MaxConcurrent: maxConcurrent,
		Status:        WorkerStatusAvailable,
	}
}

// Endpoint returns the base URL of the worker's execution API
func (w *WorkerRecord) Endpoint() string {
	return fmt.Sprintf("http://%s:%d", w.Host, w.Port)
}

// IsAvailable reports whether the worker can accept another execution
func (w *WorkerRecord) IsAvailable() bool {
	return w.Status == WorkerStatusAvailable && w.CurrentLoad < w.MaxConcurrent
}

// LoadPercentage returns the load as a percentage of capacity
func (w *WorkerRecord) LoadPercentage() float64 {
	if w.MaxConcurrent == 0 {
		return 100
	}
	return float64(w.CurrentLoad) / float64(w.MaxConcurrent) * 100
}

// HasCapability reports whether the worker declared the given tag
func (w *WorkerRecord) HasCapability(tag string) bool {
	for _, c := range w.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

// HasAllCapabilities reports whether the worker declared every given tag
func (w *WorkerRecord) HasAllCapabilities(tags []string) bool {
	for _, tag := range tags {
		if !w.HasCapability(tag) {
			return false
		}
	}
	return true
}

// Clone returns a snapshot copy safe to use outside the pool lock
func (w *WorkerRecord) Clone() *WorkerRecord {
	cp := *w
	cp.Capabilities = append([]string(nil), w.Capabilities...)
	return &cp
}
