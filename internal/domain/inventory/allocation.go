package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Demand is the quantity of one food that must be drawn from stock
type Demand struct {
	FoodID   int64
	Quantity decimal.Decimal
}

// FoodAllocation lists the lot draws that satisfy one demand
type FoodAllocation struct {
	FoodID   int64
	Required decimal.Decimal
	Draws    []LotDraw
}

// Consumed returns the total quantity drawn for the food
func (a FoodAllocation) Consumed() decimal.Decimal {
	total := decimal.Zero
	for _, d := range a.Draws {
		total = total.Add(d.Taken)
	}
	return total
}

// AllocationPlan is the full set of lot draws for a basket run.
// It is computed from a snapshot and never mutates it.
type AllocationPlan struct {
	Strategy string
	Foods    []FoodAllocation
}

// Draws returns every lot draw in the plan, food by food in consumption order
func (p *AllocationPlan) Draws() []LotDraw {
	var draws []LotDraw
	for _, f := range p.Foods {
		draws = append(draws, f.Draws...)
	}
	return draws
}

// Consumed returns the quantity drawn for a food
func (p *AllocationPlan) Consumed(foodID int64) decimal.Decimal {
	for _, f := range p.Foods {
		if f.FoodID == foodID {
			return f.Consumed()
		}
	}
	return decimal.Zero
}

// PlanAllocation asks the strategy which lots cover each demand and turns the
// selections into lot draws. Demands must already be known to be coverable;
// a shortfall here means the snapshot and demands disagree and is an error.
func PlanAllocation(
	ctx context.Context,
	allocator strategy.LotAllocationStrategy,
	demands []Demand,
	snapshot StockSnapshot,
	at time.Time,
) (*AllocationPlan, error) {
	plan := &AllocationPlan{
		Strategy: allocator.Name(),
		Foods:    make([]FoodAllocation, 0, len(demands)),
	}

	for _, demand := range demands {
		if !demand.Quantity.IsPositive() {
			continue
		}

		lots := snapshot.Lots(demand.FoodID)
		byID := make(map[int64]*Lot, len(lots))
		stockLots := make([]strategy.StockLot, len(lots))
		for i := range lots {
			byID[lots[i].ID] = &lots[i]
			stockLots[i] = strategy.StockLot{
				ID:         lots[i].ID,
				FoodID:     lots[i].FoodID,
				Quantity:   lots[i].Quantity,
				ExpiryDate: lots[i].ExpiryDate,
				ReceivedAt: lots[i].ReceivedAt,
			}
		}

		result, err := allocator.SelectLots(ctx, strategy.LotSelectionContext{
			FoodID:   demand.FoodID,
			Quantity: demand.Quantity,
			Date:     at,
		}, stockLots)
		if err != nil {
			return nil, fmt.Errorf("select lots for food %d: %w", demand.FoodID, err)
		}
		if result.ShortfallQty.IsPositive() {
			return nil, shared.ErrInsufficientStock.WithMessage(
				fmt.Sprintf("Food %d is short by %s", demand.FoodID, result.ShortfallQty))
		}

		alloc := FoodAllocation{FoodID: demand.FoodID, Required: demand.Quantity}
		seen := make(map[int64]bool, len(result.Selections))
		for _, sel := range result.Selections {
			lot, ok := byID[sel.LotID]
			if !ok || seen[sel.LotID] {
				return nil, fmt.Errorf("strategy %s selected unknown or repeated lot %d", allocator.Name(), sel.LotID)
			}
			seen[sel.LotID] = true

			draw, err := lot.Draw(sel.Quantity)
			if err != nil {
				return nil, err
			}
			alloc.Draws = append(alloc.Draws, draw)
		}

		if !alloc.Consumed().Equal(demand.Quantity) {
			return nil, fmt.Errorf("strategy %s drew %s of food %d, expected %s",
				allocator.Name(), alloc.Consumed(), demand.FoodID, demand.Quantity)
		}
		plan.Foods = append(plan.Foods, alloc)
	}

	return plan, nil
}
