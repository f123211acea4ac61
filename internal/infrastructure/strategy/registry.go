package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/domain/shared/strategy"
)

// StrategyRegistry manages strategy registrations
type StrategyRegistry struct {
	mu            sync.RWMutex
	lotStrategies map[string]strategy.LotAllocationStrategy
	defaults      map[strategy.StrategyType]string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		lotStrategies: make(map[string]strategy.LotAllocationStrategy),
		defaults:      make(map[strategy.StrategyType]string),
	}
}

// RegisterLotStrategy registers a lot allocation strategy. Baskets must
// consume the earliest expiring stock first, so strategies that ignore
// expiry are rejected.
func (r *StrategyRegistry) RegisterLotStrategy(s strategy.LotAllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if !s.ConsidersExpiry() {
		return fmt.Errorf("%w: lot strategy '%s' does not order by expiry", shared.ErrInvalidInput, name)
	}
	if _, exists := r.lotStrategies[name]; exists {
		return fmt.Errorf("%w: lot strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.lotStrategies[name] = s
	return nil
}

// GetLotStrategy returns a lot strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetLotStrategy(name string) (strategy.LotAllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeLotAllocation]
		if name == "" {
			return nil, fmt.Errorf("%w: no default lot strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.lotStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: lot strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// GetLotStrategyOrDefault returns a lot strategy by name, or the default if not found
func (r *StrategyRegistry) GetLotStrategyOrDefault(name string) strategy.LotAllocationStrategy {
	s, err := r.GetLotStrategy(name)
	if err != nil {
		s, _ = r.GetLotStrategy("")
	}
	return s
}

// ListLotStrategies returns all registered lot strategy names
func (r *StrategyRegistry) ListLotStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.lotStrategies))
	for name := range r.lotStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterLotStrategy removes a lot strategy
func (r *StrategyRegistry) UnregisterLotStrategy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lotStrategies[name]; !exists {
		return fmt.Errorf("%w: lot strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.lotStrategies, name)

	if r.defaults[strategy.StrategyTypeLotAllocation] == name {
		delete(r.defaults, strategy.StrategyTypeLotAllocation)
	}
	return nil
}

// SetDefault sets the default strategy for a type. The strategy must be registered.
func (r *StrategyRegistry) SetDefault(strategyType strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch strategyType {
	case strategy.StrategyTypeLotAllocation:
		if _, exists := r.lotStrategies[name]; !exists {
			return fmt.Errorf("%w: lot strategy '%s' not found", shared.ErrNotFound, name)
		}
	default:
		return fmt.Errorf("%w: unknown strategy type '%s'", shared.ErrInvalidInput, strategyType)
	}

	r.defaults[strategyType] = name
	return nil
}

// GetDefault returns the default strategy name for a type
func (r *StrategyRegistry) GetDefault(strategyType strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType]
}
