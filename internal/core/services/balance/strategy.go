package balance

import (
	"fmt"
	"strings"

	"gitlab.com/toolmesh.dev/internal/domain"
	"gitlab.com/toolmesh.dev/internal/static/errs"
)

// Strategy picks one worker among candidates that the pool manager has
// already filtered for availability, capabilities and exclusion. Strategies
// never re-filter; they only choose. Select returns nil on an empty list.
type Strategy interface {
	Select(candidates []*domain.WorkerRecord) *domain.WorkerRecord
}

// Strategy names accepted by NewStrategy (case-insensitive).
const (
	StrategyRoundRobin      = "round_robin"
	StrategyLeastLoaded     = "least_loaded"
	StrategyCapabilityAware = "capability_aware"
	StrategyRandom          = "random"
	StrategyWeighted        = "weighted"
)

// NewStrategy resolves a strategy by name. An unrecognized name is a
// configuration error and fails fast.
func NewStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case StrategyRoundRobin:
		return NewRoundRobin(), nil
	case StrategyLeastLoaded:
		return &LeastLoaded{}, nil
	case StrategyCapabilityAware:
		return &CapabilityAware{}, nil
	case StrategyRandom:
		return NewRandom(), nil
	case StrategyWeighted:
		return &WeightedLoad{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.UnknownStrategy, name)
	}
}
