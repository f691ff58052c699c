package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/toolmesh.dev/internal/adapter/logging"
	"gitlab.com/toolmesh.dev/internal/config"
	"gitlab.com/toolmesh.dev/internal/domain"
	"gitlab.com/toolmesh.dev/internal/static/errs"
)

func newTestPool(t *testing.T, strategy string) *WorkerPoolService {
	t.Helper()
	svc, err := NewWorkerPoolService(&config.PoolConfig{
		HeartbeatInterval: 10 * time.Millisecond,
		HeartbeatTimeout:  50 * time.Millisecond,
		Strategy:          strategy,
	}, logging.NewZapLogger())
	require.NoError(t, err)
	return svc
}

func testWorker(id string, maxConcurrent int, caps ...string) *domain.WorkerRecord {
	return domain.NewWorkerRecord(id, "localhost", 9000, caps, maxConcurrent)
}

func TestNewWorkerPoolServiceUnknownStrategy(t *testing.T) {
	_, err := NewWorkerPoolService(&config.PoolConfig{Strategy: "no_such_strategy"}, logging.NewZapLogger())
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.UnknownStrategy))
}

func TestRegisterUnregisterSetSemantics(t *testing.T) {
	svc := newTestPool(t, "least_loaded")

	svc.RegisterWorker(testWorker("w1", 5))
	svc.RegisterWorker(testWorker("w2", 5))
	svc.RegisterWorker(testWorker("w3", 5))
	svc.UnregisterWorker("w2")
	svc.UnregisterWorker("missing") // no-op

	workers := svc.ListWorkers()
	require.Len(t, workers, 2)
	assert.Equal(t, "w1", workers[0].ID)
	assert.Equal(t, "w3", workers[1].ID)

	// re-registering overwrites
	replacement := testWorker("w1", 9)
	svc.RegisterWorker(replacement)
	w, ok := svc.GetWorker("w1")
	require.True(t, ok)
	assert.Equal(t, 9, w.MaxConcurrent)
	assert.Equal(t, domain.WorkerStatusAvailable, w.Status)
	assert.False(t, w.LastHeartbeat.IsZero())
}

func TestRegisterUnregisterConcurrent(t *testing.T) {
	svc := newTestPool(t, "least_loaded")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("w%d", i)
			svc.RegisterWorker(testWorker(id, 5))
			if i%2 == 0 {
				svc.UnregisterWorker(id)
			}
		}(i)
	}
	wg.Wait()

	// odd ids remain, even ids are gone
	workers := svc.ListWorkers()
	assert.Len(t, workers, 25)
}

func TestSelectWorkerReservesCapacity(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 2))

	first := svc.SelectWorker(nil, nil)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.CurrentLoad)

	second := svc.SelectWorker(nil, nil)
	require.NotNil(t, second)
	assert.Equal(t, 2, second.CurrentLoad)

	// at capacity now
	assert.Nil(t, svc.SelectWorker(nil, nil))
	assert.False(t, svc.HasAvailableWorkers())

	svc.ReleaseWorker("w1")
	assert.True(t, svc.HasAvailableWorkers())
}

func TestSelectWorkerNeverExceedsCapacityConcurrently(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 3))
	svc.RegisterWorker(testWorker("w2", 3))

	var mu sync.Mutex
	selections := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w := svc.SelectWorker(nil, nil); w != nil {
				mu.Lock()
				selections++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// total reserved capacity is 6; no over-subscription
	assert.Equal(t, 6, selections)
	for _, w := range svc.ListWorkers() {
		assert.LessOrEqual(t, w.CurrentLoad, w.MaxConcurrent)
	}
}

func TestSelectWorkerCapabilityFilter(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("cpu-1", 5))
	svc.RegisterWorker(testWorker("gpu-1", 5, "gpu"))

	chosen := svc.SelectWorker([]string{"gpu"}, nil)
	require.NotNil(t, chosen)
	assert.Equal(t, "gpu-1", chosen.ID)

	// nobody offers tpu
	assert.Nil(t, svc.SelectWorker([]string{"tpu"}, nil))
}

func TestSelectWorkerHonorsExclusion(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 5))
	svc.RegisterWorker(testWorker("w2", 5))

	chosen := svc.SelectWorker(nil, []string{"w1"})
	require.NotNil(t, chosen)
	assert.Equal(t, "w2", chosen.ID)

	assert.Nil(t, svc.SelectWorker(nil, []string{"w1", "w2"}))
}

func TestReleaseWorkerClampsAtZero(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 5))

	require.NotNil(t, svc.SelectWorker(nil, nil))
	svc.ReleaseWorker("w1")
	svc.ReleaseWorker("w1") // double release
	svc.ReleaseWorker("w1")

	w, ok := svc.GetWorker("w1")
	require.True(t, ok)
	assert.Equal(t, 0, w.CurrentLoad)
}

func TestMarkWorkerFailed(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 5))
	require.NotNil(t, svc.SelectWorker(nil, nil))

	svc.MarkWorkerFailed("w1")

	w, ok := svc.GetWorker("w1")
	require.True(t, ok)
	assert.Equal(t, domain.WorkerStatusOffline, w.Status)
	assert.Equal(t, int64(1), w.FailedExecutions)
	// failure accounting does not touch the load
	assert.Equal(t, 1, w.CurrentLoad)
}

func TestUpdateHeartbeatSelfHeals(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 5))
	svc.MarkWorkerFailed("w1")

	before, _ := svc.GetWorker("w1")
	require.NoError(t, svc.UpdateHeartbeat("w1"))

	after, ok := svc.GetWorker("w1")
	require.True(t, ok)
	assert.Equal(t, domain.WorkerStatusAvailable, after.Status)
	assert.False(t, after.LastHeartbeat.Before(before.LastHeartbeat))

	err := svc.UpdateHeartbeat("missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.WorkerNotFound))
}

func TestRecordExecution(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 5))

	svc.RecordExecution("w1")
	svc.RecordExecution("w1")
	svc.RecordExecution("missing") // no-op

	w, _ := svc.GetWorker("w1")
	assert.Equal(t, int64(2), w.TotalExecutions)
}

func TestSweepStaleWorkers(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("fresh", 5))
	svc.RegisterWorker(testWorker("stale", 5))

	svc.mu.Lock()
	svc.workers["stale"].LastHeartbeat = time.Now().Add(-time.Minute)
	// fresh stays just inside the window
	svc.workers["fresh"].LastHeartbeat = time.Now()
	svc.mu.Unlock()

	svc.sweepStaleWorkers()

	stale, _ := svc.GetWorker("stale")
	assert.Equal(t, domain.WorkerStatusOffline, stale.Status)
	fresh, _ := svc.GetWorker("fresh")
	assert.Equal(t, domain.WorkerStatusAvailable, fresh.Status)
}

func TestHealthMonitorMarksStaleWorkersOffline(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("w1", 5))

	svc.mu.Lock()
	svc.workers["w1"].LastHeartbeat = time.Now().Add(-time.Minute)
	svc.mu.Unlock()

	svc.StartHealthMonitor(context.Background())
	defer svc.StopHealthMonitor()

	require.Eventually(t, func() bool {
		w, _ := svc.GetWorker("w1")
		return w.Status == domain.WorkerStatusOffline
	}, time.Second, 5*time.Millisecond)

	// stop is idempotent
	svc.StopHealthMonitor()
	svc.StopHealthMonitor()
}

func TestGetWorkerStats(t *testing.T) {
	svc := newTestPool(t, "least_loaded")
	svc.RegisterWorker(testWorker("available", 5))
	svc.RegisterWorker(testWorker("busy", 1))
	svc.RegisterWorker(testWorker("offline", 5))

	require.NotNil(t, svc.SelectWorker(nil, []string{"available", "offline"})) // fills "busy"
	svc.MarkWorkerFailed("offline")
	svc.RecordExecution("available")

	stats := svc.GetWorkerStats()
	assert.Equal(t, 3, stats.TotalWorkers)
	assert.Equal(t, 1, stats.AvailableWorkers)
	assert.Equal(t, 1, stats.BusyWorkers)
	assert.Equal(t, 1, stats.OfflineWorkers)
	assert.Equal(t, 1, stats.TotalLoad)
	assert.Equal(t, int64(1), stats.TotalExecutions)
	assert.Equal(t, int64(1), stats.FailedExecutions)
}
