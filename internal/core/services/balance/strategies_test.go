package balance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/toolmesh.dev/internal/domain"
	"gitlab.com/toolmesh.dev/internal/static/errs"
)

func worker(id string, load, maxConcurrent int, caps ...string) *domain.WorkerRecord {
	w := domain.NewWorkerRecord(id, "localhost", 9000, caps, maxConcurrent)
	w.CurrentLoad = load
	return w
}

func TestNewStrategy(t *testing.T) {
	for _, name := range []string{"round_robin", "least_loaded", "capability_aware", "random", "weighted"} {
		s, err := NewStrategy(name)
		require.NoError(t, err, name)
		require.NotNil(t, s, name)
	}

	// case-insensitive
	s, err := NewStrategy("Least_Loaded")
	require.NoError(t, err)
	require.IsType(t, &LeastLoaded{}, s)

	// unknown names fail fast
	_, err = NewStrategy("first_fit")
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.UnknownStrategy))
}

func TestRoundRobinCyclesInListOrder(t *testing.T) {
	candidates := []*domain.WorkerRecord{
		worker("a", 0, 5),
		worker("b", 0, 5),
		worker("c", 0, 5),
	}
	s := NewRoundRobin()

	counts := map[string]int{}
	var order []string
	for i := 0; i < 9; i++ {
		chosen := s.Select(candidates)
		require.NotNil(t, chosen)
		counts[chosen.ID]++
		order = append(order, chosen.ID)
	}

	// 9 calls over 3 candidates: each exactly 3 times, cycling in list order
	assert.Equal(t, map[string]int{"a": 3, "b": 3, "c": 3}, counts)
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a", "b", "c"}, order)
}

func TestRoundRobinCursorOverCurrentList(t *testing.T) {
	s := NewRoundRobin()
	full := []*domain.WorkerRecord{worker("a", 0, 5), worker("b", 0, 5), worker("c", 0, 5)}

	assert.Equal(t, "a", s.Select(full).ID)
	assert.Equal(t, "b", s.Select(full).ID)

	// candidate set shrank between calls; the cursor wraps over the new list
	short := full[:2]
	assert.Equal(t, "a", s.Select(short).ID)

	assert.Nil(t, s.Select(nil))
}

func TestLeastLoaded(t *testing.T) {
	s := &LeastLoaded{}

	chosen := s.Select([]*domain.WorkerRecord{
		worker("a", 3, 5),
		worker("b", 1, 5),
		worker("c", 2, 5),
	})
	require.Equal(t, "b", chosen.ID)

	// tie broken by list order: first minimum wins
	chosen = s.Select([]*domain.WorkerRecord{
		worker("a", 2, 5),
		worker("b", 1, 5),
		worker("c", 1, 5),
	})
	require.Equal(t, "b", chosen.ID)

	assert.Nil(t, s.Select(nil))
}

func TestCapabilityAware(t *testing.T) {
	s := &CapabilityAware{}

	// more capabilities wins even at higher load
	chosen := s.Select([]*domain.WorkerRecord{
		worker("a", 0, 5, "gpu"),
		worker("b", 4, 5, "gpu", "high-memory"),
	})
	require.Equal(t, "b", chosen.ID)

	// equal capability count: lower load wins
	chosen = s.Select([]*domain.WorkerRecord{
		worker("a", 3, 5, "gpu"),
		worker("b", 1, 5, "high-memory"),
	})
	require.Equal(t, "b", chosen.ID)

	// full tie: first in list order
	chosen = s.Select([]*domain.WorkerRecord{
		worker("a", 1, 5, "gpu"),
		worker("b", 1, 5, "gpu"),
	})
	require.Equal(t, "a", chosen.ID)

	assert.Nil(t, s.Select(nil))
}

func TestRandomSelectsFromCandidates(t *testing.T) {
	s := NewRandom()
	candidates := []*domain.WorkerRecord{
		worker("a", 0, 5),
		worker("b", 0, 5),
		worker("c", 0, 5),
	}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		chosen := s.Select(candidates)
		require.NotNil(t, chosen)
		seen[chosen.ID] = true
	}
	// 200 uniform draws over 3 candidates hit every one
	assert.Len(t, seen, 3)

	assert.Nil(t, s.Select(nil))
}

func TestWeightedLoad(t *testing.T) {
	s := &WeightedLoad{}

	// b has the most spare capacity (10-2=8)
	chosen := s.Select([]*domain.WorkerRecord{
		worker("a", 1, 5),
		worker("b", 2, 10),
		worker("c", 0, 5),
	})
	require.Equal(t, "b", chosen.ID)

	// tie broken by list order
	chosen = s.Select([]*domain.WorkerRecord{
		worker("a", 1, 5),
		worker("b", 1, 5),
	})
	require.Equal(t, "a", chosen.ID)

	assert.Nil(t, s.Select(nil))
}
