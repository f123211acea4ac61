package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func lotIDs(lots []Lot) []int64 {
	ids := make([]int64, len(lots))
	for i, l := range lots {
		ids[i] = l.ID
	}
	return ids
}

func TestSortByExpiry(t *testing.T) {
	lots := []Lot{
		availableLot(5, 1, 1, nil),
		availableLot(4, 1, 1, date("2025-03-01")),
		availableLot(3, 1, 1, nil),
		availableLot(2, 1, 1, date("2025-01-01")),
		availableLot(1, 1, 1, date("2025-03-01")),
	}

	SortByExpiry(lots)

	assert.Equal(t, []int64{2, 1, 4, 3, 5}, lotIDs(lots))
}

func TestNewStockSnapshot(t *testing.T) {
	used := availableLot(3, 1, 0, nil)
	used.Status = LotStatusUsed
	discarded := availableLot(4, 1, 9, nil)
	discarded.Status = LotStatusDiscarded
	empty := availableLot(6, 1, 0, nil)

	snapshot := NewStockSnapshot([]Lot{
		availableLot(1, 1, 5, date("2025-02-01")),
		availableLot(2, 1, 3, date("2025-01-01")),
		used,
		discarded,
		availableLot(5, 2, 7, nil),
		empty,
	})

	assert.Equal(t, []int64{2, 1}, lotIDs(snapshot.Lots(1)))
	assert.True(t, snapshot.Available(1).Equal(decimal.NewFromInt(8)))
	assert.True(t, snapshot.Available(2).Equal(decimal.NewFromInt(7)))
	assert.True(t, snapshot.Available(99).IsZero())
	assert.True(t, snapshot.Total().Equal(decimal.NewFromInt(15)))
}
