package allocation

import (
	"context"
	"sort"

	"github.com/foodbank/backend/internal/domain/shared/strategy"
)

// FEFOLotStrategy consumes the soonest-expiring lots first.
// Lots without an expiry date never expire and are consumed last.
// Lots with the same expiry date are consumed in ascending ID order.
// Expired lots that are still AVAILABLE are consumed like any other.
type FEFOLotStrategy struct {
	strategy.BaseStrategy
}

// NewFEFOLotStrategy creates a new FEFO lot strategy
func NewFEFOLotStrategy() *FEFOLotStrategy {
	return &FEFOLotStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fefo",
			strategy.StrategyTypeLotAllocation,
			"First Expired First Out - consumes lots by expiry date, undated lots last",
		),
	}
}

// SelectLots selects lots in FEFO order
func (s *FEFOLotStrategy) SelectLots(
	ctx context.Context,
	selCtx strategy.LotSelectionContext,
	lots []strategy.StockLot,
) (strategy.LotSelectionResult, error) {
	if err := ctx.Err(); err != nil {
		return strategy.LotSelectionResult{}, err
	}

	filtered := filterAvailableLots(lots, selCtx.FoodID)

	sort.SliceStable(filtered, func(i, j int) bool {
		iExpiry := filtered[i].ExpiryDate
		jExpiry := filtered[j].ExpiryDate

		if iExpiry == nil && jExpiry == nil {
			return filtered[i].ID < filtered[j].ID
		}
		if iExpiry == nil {
			return false
		}
		if jExpiry == nil {
			return true
		}
		if !iExpiry.Equal(*jExpiry) {
			return iExpiry.Before(*jExpiry)
		}
		return filtered[i].ID < filtered[j].ID
	})

	return selectFromLots(filtered, selCtx.Quantity), nil
}

// ConsidersExpiry returns true as FEFO orders by expiry date
func (s *FEFOLotStrategy) ConsidersExpiry() bool {
	return true
}
