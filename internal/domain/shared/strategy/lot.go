package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockLot is the strategy-facing view of an available lot
type StockLot struct {
	ID         int64
	FoodID     int64
	Quantity   decimal.Decimal
	ExpiryDate *time.Time
	ReceivedAt time.Time
}

// LotSelection is the quantity a strategy decided to take from one lot
type LotSelection struct {
	LotID      int64
	Available  decimal.Decimal
	Quantity   decimal.Decimal
	ExpiryDate *time.Time
}

// LotSelectionContext provides context for lot selection
type LotSelectionContext struct {
	FoodID   int64
	Quantity decimal.Decimal
	Date     time.Time
}

// LotSelectionResult contains the result of lot selection.
// Selections are in consumption order.
type LotSelectionResult struct {
	Selections   []LotSelection
	TotalQty     decimal.Decimal
	ShortfallQty decimal.Decimal
}

// LotAllocationStrategy decides which lots satisfy a required quantity
type LotAllocationStrategy interface {
	Strategy
	// SelectLots selects lots for consumption based on strategy rules.
	// Lots not belonging to selCtx.FoodID or with no quantity are ignored.
	SelectLots(ctx context.Context, selCtx LotSelectionContext, lots []StockLot) (LotSelectionResult, error)
	// ConsidersExpiry returns true if the strategy orders by expiry date
	ConsidersExpiry() bool
}
