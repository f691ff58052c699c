package balance

import (
	"math/rand"
	"sync"
	"time"

	"gitlab.com/toolmesh.dev/internal/domain"
)

// RoundRobin rotates over the candidate list passed on each call. The cursor
// indexes into the current list, not a global worker ordering, so rotation
// adapts to whatever subset survives filtering.
type RoundRobin struct {
	mu   sync.Mutex
	next int
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

func (s *RoundRobin) Select(candidates []*domain.WorkerRecord) *domain.WorkerRecord {
	if len(candidates) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	chosen := candidates[s.next%len(candidates)]
	s.next++
	return chosen
}

// LeastLoaded picks the candidate with the lowest current load; ties go to
// the first minimum in list order.
type LeastLoaded struct{}

func (s *LeastLoaded) Select(candidates []*domain.WorkerRecord) *domain.WorkerRecord {
	var best *domain.WorkerRecord
	for _, w := range candidates {
		if best == nil || w.CurrentLoad < best.CurrentLoad {
			best = w
		}
	}
	return best
}

// CapabilityAware prefers workers declaring more capabilities, breaking ties
// by lower current load, then list order.
type CapabilityAware struct{}

func (s *CapabilityAware) Select(candidates []*domain.WorkerRecord) *domain.WorkerRecord {
	var best *domain.WorkerRecord
	for _, w := range candidates {
		if best == nil {
			best = w
			continue
		}
		if len(w.Capabilities) > len(best.Capabilities) {
			best = w
			continue
		}
		if len(w.Capabilities) == len(best.Capabilities) && w.CurrentLoad < best.CurrentLoad {
			best = w
		}
	}
	return best
}

// Random selects uniformly among candidates
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom() *Random {
	return &Random{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *Random) Select(candidates []*domain.WorkerRecord) *domain.WorkerRecord {
	if len(candidates) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return candidates[s.rng.Intn(len(candidates))]
}

// WeightedLoad picks the candidate with the most spare capacity
// (maxConcurrent - currentLoad); ties go to the first maximum in list order.
type WeightedLoad struct{}

func (s *WeightedLoad) Select(candidates []*domain.WorkerRecord) *domain.WorkerRecord {
	var best *domain.WorkerRecord
	for _, w := range candidates {
		if best == nil || w.MaxConcurrent-w.CurrentLoad > best.MaxConcurrent-best.CurrentLoad {
			best = w
		}
	}
	return best
}
