package strategy

import (
	"github.com/foodbank/backend/internal/domain/shared/strategy"
	"github.com/foodbank/backend/internal/infrastructure/strategy/allocation"
)

// DefaultLotStrategy is the lot allocation strategy used when none is configured
const DefaultLotStrategy = "fefo"

// NewRegistryWithDefaults creates a new registry with FEFO registered as
// the default lot allocation strategy.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	if err := r.RegisterLotStrategy(allocation.NewFEFOLotStrategy()); err != nil {
		return nil, err
	}

	if err := r.SetDefault(strategy.StrategyTypeLotAllocation, DefaultLotStrategy); err != nil {
		return nil, err
	}

	return r, nil
}
