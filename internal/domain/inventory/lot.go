package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle status of a lot
type LotStatus string

const (
	LotStatusAvailable LotStatus = "AVAILABLE"
	LotStatusUsed      LotStatus = "USED"
	LotStatusDiscarded LotStatus = "DISCARDED"
)

// IsValid returns true if the status is a known lot status
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusAvailable, LotStatusUsed, LotStatusDiscarded:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s LotStatus) String() string {
	return string(s)
}

// Lot is a discrete received quantity of one food, tracked with its own
// expiry date and status. Quantity never goes below zero and a lot becomes
// USED only when its quantity reaches zero.
type Lot struct {
	shared.BaseAggregateRoot
	FoodID        int64
	Quantity      decimal.Decimal
	ExpiryDate    *time.Time
	Status        LotStatus
	ReceivedAt    time.Time
	DonorName     *string
	DiscardReason *string
	DiscardedAt   *time.Time
}

// NewLot creates a new available lot
func NewLot(foodID int64, quantity decimal.Decimal, expiryDate *time.Time, donorName string) (*Lot, error) {
	if foodID <= 0 {
		return nil, shared.NewDomainError("INVALID_FOOD", "Food ID is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Lot quantity must be positive")
	}

	lot := &Lot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FoodID:            foodID,
		Quantity:          quantity,
		ExpiryDate:        expiryDate,
		Status:            LotStatusAvailable,
	}
	lot.ReceivedAt = lot.CreatedAt
	if donor := strings.TrimSpace(donorName); donor != "" {
		lot.DonorName = &donor
	}
	return lot, nil
}

// IsAvailable returns true if the lot can be allocated
func (l *Lot) IsAvailable() bool {
	return l.Status == LotStatusAvailable
}

// Draw computes the effect of taking qty from the lot without mutating it.
// Taking the whole remaining quantity marks the lot USED.
func (l *Lot) Draw(qty decimal.Decimal) (LotDraw, error) {
	if !l.IsAvailable() {
		return LotDraw{}, shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Lot %d is %s and cannot be consumed", l.ID, l.Status))
	}
	if !qty.IsPositive() {
		return LotDraw{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity to consume must be positive")
	}
	if qty.GreaterThan(l.Quantity) {
		return LotDraw{}, shared.ErrInsufficientStock.WithMessage(
			fmt.Sprintf("Lot %d holds %s, cannot take %s", l.ID, l.Quantity, qty))
	}

	remaining := l.Quantity.Sub(qty)
	status := LotStatusAvailable
	if remaining.IsZero() {
		status = LotStatusUsed
	}

	return LotDraw{
		LotID:            l.ID,
		FoodID:           l.FoodID,
		PreviousQuantity: l.Quantity,
		Taken:            qty,
		NewQuantity:      remaining,
		NewStatus:        status,
	}, nil
}

// Apply applies a draw computed from this lot's current state
func (l *Lot) Apply(d LotDraw) error {
	if d.LotID != l.ID || !d.PreviousQuantity.Equal(l.Quantity) || !l.IsAvailable() {
		return shared.ErrConcurrencyConflict.WithMessage(
			fmt.Sprintf("Lot %d changed since the draw was planned", l.ID))
	}
	l.Quantity = d.NewQuantity
	l.Status = d.NewStatus
	return nil
}

// Discard withdraws an available lot from stock. The remaining quantity is
// kept for the record; the returned update guards against concurrent changes.
func (l *Lot) Discard(reason string, at time.Time) (LotUpdate, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return LotUpdate{}, shared.NewDomainError("INVALID_REASON", "Discard reason is required")
	}
	if len(reason) > 500 {
		return LotUpdate{}, shared.NewDomainError("INVALID_REASON", "Discard reason cannot exceed 500 characters")
	}
	if !l.IsAvailable() {
		return LotUpdate{}, shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Only available lots can be discarded, lot %d is %s", l.ID, l.Status))
	}

	l.Status = LotStatusDiscarded
	l.DiscardReason = &reason
	l.DiscardedAt = &at

	l.AddDomainEvent(NewLotDiscardedEvent(l))

	return LotUpdate{
		LotID:            l.ID,
		ExpectedQuantity: l.Quantity,
		Quantity:         l.Quantity,
		Status:           LotStatusDiscarded,
		DiscardReason:    &reason,
		DiscardedAt:      &at,
	}, nil
}

// LotDraw is one planned consumption from a single lot
type LotDraw struct {
	LotID            int64
	FoodID           int64
	PreviousQuantity decimal.Decimal
	Taken            decimal.Decimal
	NewQuantity      decimal.Decimal
	NewStatus        LotStatus
}

// Update converts the draw into a conditional lot update
func (d LotDraw) Update() LotUpdate {
	return LotUpdate{
		LotID:            d.LotID,
		ExpectedQuantity: d.PreviousQuantity,
		Quantity:         d.NewQuantity,
		Status:           d.NewStatus,
	}
}

// LotUpdate is a compare-and-set write on a lot. It applies only while the
// lot is still AVAILABLE with exactly ExpectedQuantity.
type LotUpdate struct {
	LotID            int64
	ExpectedQuantity decimal.Decimal
	Quantity         decimal.Decimal
	Status           LotStatus
	DiscardReason    *string
	DiscardedAt      *time.Time
}

// Validate checks the update keeps lot invariants
func (u LotUpdate) Validate() error {
	if u.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Lot quantity cannot be negative")
	}
	if !u.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown lot status %q", u.Status))
	}
	if u.Status == LotStatusUsed && !u.Quantity.IsZero() {
		return shared.NewDomainError("INVALID_STATUS", "A lot can only be USED once empty")
	}
	if u.Status == LotStatusAvailable && u.Quantity.IsZero() {
		return shared.NewDomainError("INVALID_STATUS", "An empty lot must be marked USED")
	}
	return nil
}
