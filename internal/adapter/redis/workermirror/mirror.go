package workermirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/ports/secondary"
	"gitlab.com/toolmesh.dev/internal/domain"
)

const (
	workerKeyPrefix  = "worker:"
	workerExpiration = 5 * time.Minute
)

var _ secondary.WorkerMirror = &Mirror{}

// Mirror implements the WorkerMirror port with Redis. Records expire on
// their own when a dispatcher stops refreshing them.
type Mirror struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewMirror creates a new Redis worker mirror
func NewMirror(redisClient *redis.Client, logger primary.Logger) *Mirror {
	return &Mirror{
		redisClient: redisClient,
		logger:      logger,
	}
}

// SaveWorker writes the worker record with expiration
func (m *Mirror) SaveWorker(ctx context.Context, worker *domain.WorkerRecord) error {
	workerJSON, err := json.Marshal(worker)
	if err != nil {
		return fmt.Errorf("failed to marshal worker record: %w", err)
	}

	workerKey := workerKeyPrefix + worker.ID
	if err := m.redisClient.Set(ctx, workerKey, workerJSON, workerExpiration).Err(); err != nil {
		return fmt.Errorf("failed to save worker record: %w", err)
	}
	return nil
}

// RemoveWorker deletes the worker record
func (m *Mirror) RemoveWorker(ctx context.Context, workerID string) error {
	if err := m.redisClient.Del(ctx, workerKeyPrefix+workerID).Err(); err != nil {
		return fmt.Errorf("failed to remove worker record: %w", err)
	}
	return nil
}

// LoadWorkers retrieves every mirrored worker record using SCAN + MGET
func (m *Mirror) LoadWorkers(ctx context.Context) ([]*domain.WorkerRecord, error) {
	var cursor uint64
	var workerKeys []string
	var err error

	for {
		var keys []string
		keys, cursor, err = m.redisClient.Scan(ctx, cursor, workerKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker keys: %w", err)
		}
		workerKeys = append(workerKeys, keys...)
		if cursor == 0 {
			break
		}
	}

	if len(workerKeys) == 0 {
		return nil, nil
	}

	workerData, err := m.redisClient.MGet(ctx, workerKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve worker records: %w", err)
	}

	var workers []*domain.WorkerRecord
	for _, data := range workerData {
		if data == nil {
			continue
		}
		var worker domain.WorkerRecord
		if err := json.Unmarshal([]byte(data.(string)), &worker); err != nil {
			m.logger.Warn("Skipping undecodable worker record", "error", err)
			continue
		}
		workers = append(workers, &worker)
	}
	return workers, nil
}
