package inventory

import (
	"context"
	"time"
)

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by ID
	FindByID(ctx context.Context, id int64) (*Lot, error)

	// FindAvailableByFoods returns AVAILABLE lots of the given foods ordered
	// by expiry date ascending with undated lots last, then by ID
	FindAvailableByFoods(ctx context.Context, foodIDs []int64) ([]Lot, error)

	// FindAvailableExpiringBefore returns AVAILABLE lots whose expiry date is
	// before cutoff, soonest first
	FindAvailableExpiringBefore(ctx context.Context, cutoff time.Time) ([]Lot, error)

	// Save inserts a new lot
	Save(ctx context.Context, lot *Lot) error

	// CompareAndUpdate applies update only if the lot is still AVAILABLE with
	// the expected quantity. Returns shared.ErrConcurrencyConflict otherwise.
	CompareAndUpdate(ctx context.Context, update LotUpdate) error
}
