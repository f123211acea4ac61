package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// StockSnapshot is a read-only view of the available lots of a set of foods,
// grouped by food. Within a food, lots are kept in canonical consumption
// order: expiry ascending, undated lots last, ties by lot ID.
type StockSnapshot struct {
	byFood map[int64][]Lot
}

// NewStockSnapshot builds a snapshot from lots. Lots that are not AVAILABLE
// or hold no quantity are left out.
func NewStockSnapshot(lots []Lot) StockSnapshot {
	byFood := make(map[int64][]Lot)
	for _, lot := range lots {
		if !lot.IsAvailable() || !lot.Quantity.IsPositive() {
			continue
		}
		byFood[lot.FoodID] = append(byFood[lot.FoodID], lot)
	}
	for foodID := range byFood {
		SortByExpiry(byFood[foodID])
	}
	return StockSnapshot{byFood: byFood}
}

// Lots returns the available lots of a food in consumption order
func (s StockSnapshot) Lots(foodID int64) []Lot {
	return s.byFood[foodID]
}

// Available returns the total available quantity of a food
func (s StockSnapshot) Available(foodID int64) decimal.Decimal {
	total := decimal.Zero
	for _, lot := range s.byFood[foodID] {
		total = total.Add(lot.Quantity)
	}
	return total
}

// Total returns the total available quantity across all foods
func (s StockSnapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for foodID := range s.byFood {
		total = total.Add(s.Available(foodID))
	}
	return total
}

// SortByExpiry orders lots by expiry date ascending. Lots without an expiry
// date go last. Equal dates are ordered by lot ID so the order is total.
func SortByExpiry(lots []Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.ID < b.ID
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		default:
			return a.ID < b.ID
		}
	})
}
