package basket

import (
	"fmt"
	"strings"

	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BasketBatch is one production run that turned stock into a number of
// assembled baskets. It is the audit record of what was consumed.
type BasketBatch struct {
	shared.BaseAggregateRoot
	BasketQuantity int
	CreatedBy      *string
	Items          []BasketItem
}

// BasketItem is the total quantity of one food consumed by a batch
type BasketItem struct {
	ID            int64
	BasketBatchID int64
	FoodID        int64
	FoodName      string
	TotalQuantity decimal.Decimal
}

// NewBasketBatch builds the batch record for an allocation plan. Only foods
// with a positive requirement get an item, and each item must match what the
// plan drew from stock.
func NewBasketBatch(basketQuantity int, createdBy string, reqs []catalog.Requirement, plan *inventory.AllocationPlan) (*BasketBatch, error) {
	if basketQuantity <= 0 {
		return nil, catalog.ErrInvalidBasketQuantity
	}
	if plan == nil {
		return nil, shared.ErrInvalidInput.WithMessage("Allocation plan is required")
	}

	batch := &BasketBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BasketQuantity:    basketQuantity,
		CreatedBy:         normalizeActor(createdBy),
	}

	for _, req := range reqs {
		if !req.Required.IsPositive() {
			continue
		}
		consumed := plan.Consumed(req.FoodID)
		if !consumed.Equal(req.Required) {
			return nil, fmt.Errorf("food %d: plan consumes %s but %s is required", req.FoodID, consumed, req.Required)
		}
		batch.Items = append(batch.Items, BasketItem{
			FoodID:        req.FoodID,
			FoodName:      req.Name,
			TotalQuantity: req.Required,
		})
	}

	return batch, nil
}

// Recorded stamps the store-assigned batch ID onto the items and raises the
// assembled event. Call it after the header row is inserted.
func (b *BasketBatch) Recorded(id int64) {
	b.ID = id
	for i := range b.Items {
		b.Items[i].BasketBatchID = id
	}
	b.AddDomainEvent(NewBasketBatchAssembledEvent(b))
}

// TotalQuantity returns the total recorded for a food
func (b *BasketBatch) TotalQuantity(foodID int64) decimal.Decimal {
	for _, item := range b.Items {
		if item.FoodID == foodID {
			return item.TotalQuantity
		}
	}
	return decimal.Zero
}

func normalizeActor(actor string) *string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil
	}
	return &actor
}
