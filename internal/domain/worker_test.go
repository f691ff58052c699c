package domain

import "testing"

func TestWorkerRecordAvailability(t *testing.T) {
	w := NewWorkerRecord("w1", "localhost", 9001, []string{"gpu"}, 2)

	if !w.IsAvailable() {
		t.Fatal("fresh worker should be available")
	}

	w.CurrentLoad = 2
	if w.IsAvailable() {
		t.Error("worker at capacity should not be available")
	}

	w.CurrentLoad = 1
	w.Status = WorkerStatusOffline
	if w.IsAvailable() {
		t.Error("offline worker should not be available")
	}

	w.Status = WorkerStatusDraining
	if w.IsAvailable() {
		t.Error("draining worker should not be available")
	}
}

func TestWorkerRecordDefaults(t *testing.T) {
	w := NewWorkerRecord("w1", "localhost", 9001, nil, 0)
	if w.MaxConcurrent != DefaultMaxConcurrent {
		t.Errorf("expected default maxConcurrent %d, got %d", DefaultMaxConcurrent, w.MaxConcurrent)
	}
	if w.Endpoint() != "http://localhost:9001" {
		t.Errorf("unexpected endpoint %q", w.Endpoint())
	}
}

func TestWorkerRecordLoadPercentage(t *testing.T) {
	w := NewWorkerRecord("w1", "localhost", 9001, nil, 4)
	w.CurrentLoad = 1
	if got := w.LoadPercentage(); got != 25 {
		t.Errorf("expected 25%%, got %v", got)
	}

	// zero capacity reads as fully loaded
	w.MaxConcurrent = 0
	if got := w.LoadPercentage(); got != 100 {
		t.Errorf("expected 100%% for zero capacity, got %v", got)
	}
}

func TestWorkerRecordCapabilities(t *testing.T) {
	w := NewWorkerRecord("w1", "localhost", 9001, []string{"gpu", "high-memory"}, 5)

	if !w.HasCapability("gpu") {
		t.Error("expected gpu capability")
	}
	if w.HasCapability("tpu") {
		t.Error("unexpected tpu capability")
	}
	if !w.HasAllCapabilities([]string{"gpu", "high-memory"}) {
		t.Error("expected all declared capabilities to match")
	}
	if w.HasAllCapabilities([]string{"gpu", "tpu"}) {
		t.Error("partial match should fail HasAllCapabilities")
	}
	if !w.HasAllCapabilities(nil) {
		t.Error("empty requirement should always match")
	}
}

func TestWorkerRecordClone(t *testing.T) {
	w := NewWorkerRecord("w1", "localhost", 9001, []string{"gpu"}, 5)
	cp := w.Clone()

	cp.CurrentLoad = 3
	cp.Capabilities[0] = "tpu"

	if w.CurrentLoad != 0 {
		t.Error("clone mutation leaked into original load")
	}
	if w.Capabilities[0] != "gpu" {
		t.Error("clone mutation leaked into original capabilities")
	}
}
