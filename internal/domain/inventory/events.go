package inventory

import (
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeLot = "Lot"

// Event type constants
const (
	EventTypeLotDiscarded = "inventory.lot_discarded"
)

// LotDiscardedEvent is raised when a lot is withdrawn from stock
type LotDiscardedEvent struct {
	shared.BaseDomainEvent
	LotID    int64           `json:"lot_id"`
	FoodID   int64           `json:"food_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// NewLotDiscardedEvent creates a new LotDiscardedEvent
func NewLotDiscardedEvent(lot *Lot) *LotDiscardedEvent {
	reason := ""
	if lot.DiscardReason != nil {
		reason = *lot.DiscardReason
	}
	return &LotDiscardedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotDiscarded, AggregateTypeLot, lot.ID),
		LotID:           lot.ID,
		FoodID:          lot.FoodID,
		Quantity:        lot.Quantity,
		Reason:          reason,
	}
}
