package catalog

import (
	"strings"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Food is a catalog definition of an item the food bank stocks.
// Foods flagged InBasket are part of the standard basket composition.
type Food struct {
	shared.BaseEntity
	Name         string
	Category     string
	Unit         string
	Perishable   bool
	InBasket     bool
	QtyPerBasket *decimal.Decimal
}

// NewFood creates a new food definition
func NewFood(name, category, unit string) (*Food, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Food name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Food name cannot exceed 200 characters")
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Food unit cannot be empty")
	}

	return &Food{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Category:   strings.TrimSpace(category),
		Unit:       unit,
	}, nil
}

// IncludeInBasket marks the food as part of the basket composition.
// A nil or non-positive qty leaves the per-basket quantity unset.
func (f *Food) IncludeInBasket(qty *decimal.Decimal) {
	f.InBasket = true
	if qty != nil && qty.IsPositive() {
		q := *qty
		f.QtyPerBasket = &q
		return
	}
	f.QtyPerBasket = nil
}

// ExcludeFromBasket removes the food from the basket composition
func (f *Food) ExcludeFromBasket() {
	f.InBasket = false
}

// PerBasketQuantity returns the quantity of this food in one basket.
// Unset, zero or negative configured quantities default to 1.
func (f *Food) PerBasketQuantity() decimal.Decimal {
	return PerBasketQuantity(f.QtyPerBasket)
}

// PerBasketQuantity applies the default-to-one policy to a configured quantity
func PerBasketQuantity(configured *decimal.Decimal) decimal.Decimal {
	if configured == nil || !configured.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return *configured
}
