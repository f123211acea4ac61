package catalog

import (
	"sort"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrInvalidBasketQuantity is returned when the number of baskets is not a positive integer
var ErrInvalidBasketQuantity = shared.ErrInvalidInput.WithMessage("Basket quantity must be a positive integer")

// Requirement is the total quantity of one food needed for a basket run
type Requirement struct {
	FoodID    int64
	Name      string
	Unit      string
	PerBasket decimal.Decimal
	Required  decimal.Decimal
}

// CalculateRequirements computes the required quantity per basket food for
// basketQuantity baskets. Foods outside the basket composition are omitted.
// The result is ordered by food ID.
func CalculateRequirements(foods []Food, basketQuantity int) ([]Requirement, error) {
	if basketQuantity <= 0 {
		return nil, ErrInvalidBasketQuantity
	}

	n := decimal.NewFromInt(int64(basketQuantity))
	reqs := make([]Requirement, 0, len(foods))
	for i := range foods {
		food := &foods[i]
		if !food.InBasket {
			continue
		}
		per := food.PerBasketQuantity()
		reqs = append(reqs, Requirement{
			FoodID:    food.ID,
			Name:      food.Name,
			Unit:      food.Unit,
			PerBasket: per,
			Required:  per.Mul(n),
		})
	}

	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].FoodID < reqs[j].FoodID
	})

	return reqs, nil
}

// FoodIDs returns the food IDs of the requirements in order
func FoodIDs(reqs []Requirement) []int64 {
	ids := make([]int64, len(reqs))
	for i, r := range reqs {
		ids[i] = r.FoodID
	}
	return ids
}
