package allocation

import (
	"github.com/foodbank/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// filterAvailableLots keeps the lots of foodID that still hold stock
func filterAvailableLots(lots []strategy.StockLot, foodID int64) []strategy.StockLot {
	filtered := make([]strategy.StockLot, 0, len(lots))
	for _, l := range lots {
		if l.FoodID == foodID && l.Quantity.IsPositive() {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// selectFromLots walks sorted lots taking min(lot quantity, remaining) until
// the quantity is covered
func selectFromLots(lots []strategy.StockLot, quantity decimal.Decimal) strategy.LotSelectionResult {
	remainingQty := quantity
	selections := make([]strategy.LotSelection, 0)
	totalQty := decimal.Zero

	for _, lot := range lots {
		if !remainingQty.IsPositive() {
			break
		}

		selectedQty := decimal.Min(remainingQty, lot.Quantity)
		selections = append(selections, strategy.LotSelection{
			LotID:      lot.ID,
			Available:  lot.Quantity,
			Quantity:   selectedQty,
			ExpiryDate: lot.ExpiryDate,
		})

		remainingQty = remainingQty.Sub(selectedQty)
		totalQty = totalQty.Add(selectedQty)
	}

	if remainingQty.IsNegative() {
		remainingQty = decimal.Zero
	}

	return strategy.LotSelectionResult{
		Selections:   selections,
		TotalQty:     totalQty,
		ShortfallQty: remainingQty,
	}
}
