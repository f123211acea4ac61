package basket

import (
	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AvailabilityLine compares what one food requires against what is in stock
type AvailabilityLine struct {
	FoodID    int64
	Name      string
	Unit      string
	PerBasket decimal.Decimal
	Required  decimal.Decimal
	Available decimal.Decimal
	Missing   decimal.Decimal
}

// Baskets returns how many whole baskets this food's stock can supply
func (l AvailabilityLine) Baskets() int64 {
	if !l.PerBasket.IsPositive() {
		return 0
	}
	return l.Available.Div(l.PerBasket).Floor().IntPart()
}

// Shortfall is a food whose available stock does not cover the requirement
type Shortfall struct {
	FoodID          int64           `json:"food_id"`
	Name            string          `json:"name"`
	MissingQuantity decimal.Decimal `json:"missing_quantity"`
}

// AvailabilityReport is the outcome of checking stock for a basket run
type AvailabilityReport struct {
	BasketQuantity int
	Lines          []AvailabilityLine
}

// CheckAvailability compares requirements with the available stock.
// It has no side effects and yields the same report for the same inputs.
func CheckAvailability(basketQuantity int, reqs []catalog.Requirement, snapshot inventory.StockSnapshot) AvailabilityReport {
	report := AvailabilityReport{
		BasketQuantity: basketQuantity,
		Lines:          make([]AvailabilityLine, 0, len(reqs)),
	}
	for _, req := range reqs {
		available := snapshot.Available(req.FoodID)
		missing := req.Required.Sub(available)
		if missing.IsNegative() {
			missing = decimal.Zero
		}
		report.Lines = append(report.Lines, AvailabilityLine{
			FoodID:    req.FoodID,
			Name:      req.Name,
			Unit:      req.Unit,
			PerBasket: req.PerBasket,
			Required:  req.Required,
			Available: available,
			Missing:   missing,
		})
	}
	return report
}

// Shortfalls returns every food that is short, in requirement order
func (r AvailabilityReport) Shortfalls() []Shortfall {
	var shortfalls []Shortfall
	for _, line := range r.Lines {
		if line.Missing.IsPositive() {
			shortfalls = append(shortfalls, Shortfall{
				FoodID:          line.FoodID,
				Name:            line.Name,
				MissingQuantity: line.Missing,
			})
		}
	}
	return shortfalls
}

// IsSatisfied reports whether every requirement is covered
func (r AvailabilityReport) IsSatisfied() bool {
	for _, line := range r.Lines {
		if line.Missing.IsPositive() {
			return false
		}
	}
	return true
}

// Demands converts the report lines into stock demands for allocation
func (r AvailabilityReport) Demands() []inventory.Demand {
	demands := make([]inventory.Demand, 0, len(r.Lines))
	for _, line := range r.Lines {
		demands = append(demands, inventory.Demand{FoodID: line.FoodID, Quantity: line.Required})
	}
	return demands
}

// MaxBaskets returns how many whole baskets the current stock can supply.
// It is zero when the basket has no foods.
func (r AvailabilityReport) MaxBaskets() int {
	if len(r.Lines) == 0 {
		return 0
	}
	least := int64(-1)
	for _, line := range r.Lines {
		if !line.PerBasket.IsPositive() {
			continue
		}
		n := line.Baskets()
		if least < 0 || n < least {
			least = n
		}
	}
	if least < 0 {
		return 0
	}
	return int(least)
}
