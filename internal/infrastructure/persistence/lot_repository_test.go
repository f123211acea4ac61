package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func lotIDs(lots []inventory.Lot) []int64 {
	ids := make([]int64, len(lots))
	for i, l := range lots {
		ids[i] = l.ID
	}
	return ids
}

func TestGormLotRepository_FindAvailableByFoods(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	rice := seedFood(t, db, "Rice", "2")
	beans := seedFood(t, db, "Beans", "1")
	oil := seedFood(t, db, "Oil", "1")

	undated := seedLot(t, db, rice, "5", "")
	late := seedLot(t, db, rice, "5", "2025-03-01")
	early := seedLot(t, db, rice, "5", "2025-01-15")
	earlyTwin := seedLot(t, db, rice, "5", "2025-01-15")
	beansLot := seedLot(t, db, beans, "3", "2025-02-01")
	seedLot(t, db, oil, "9", "2025-01-01")

	used := seedLot(t, db, rice, "1", "2024-12-01")
	require.NoError(t, repo.CompareAndUpdate(ctx, inventory.LotUpdate{
		LotID:            used,
		ExpectedQuantity: decimal.NewFromInt(1),
		Quantity:         decimal.Zero,
		Status:           inventory.LotStatusUsed,
	}))

	t.Run("orders by expiry with undated lots last and ties by id", func(t *testing.T) {
		lots, err := repo.FindAvailableByFoods(ctx, []int64{rice})
		require.NoError(t, err)
		assert.Equal(t, []int64{early, earlyTwin, late, undated}, lotIDs(lots))
	})

	t.Run("filters by food and status", func(t *testing.T) {
		lots, err := repo.FindAvailableByFoods(ctx, []int64{rice, beans})
		require.NoError(t, err)
		assert.Len(t, lots, 5)
		assert.Contains(t, lotIDs(lots), beansLot)
		assert.NotContains(t, lotIDs(lots), used)
	})

	t.Run("empty food list returns no lots", func(t *testing.T) {
		lots, err := repo.FindAvailableByFoods(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, lots)
	})
}

func TestGormLotRepository_FindAvailableExpiringBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	rice := seedFood(t, db, "Rice", "1")
	expired := seedLot(t, db, rice, "1", "2025-01-05")
	soon := seedLot(t, db, rice, "1", "2025-01-12")
	seedLot(t, db, rice, "1", "2025-02-20")
	seedLot(t, db, rice, "1", "")

	cutoff := time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC)
	lots, err := repo.FindAvailableExpiringBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []int64{expired, soon}, lotIDs(lots))
}

func TestGormLotRepository_CompareAndUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies when the lot is unchanged", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormLotRepository(db)
		lotID := seedLot(t, db, seedFood(t, db, "Rice", "1"), "10", "2025-01-15")

		err := repo.CompareAndUpdate(ctx, inventory.LotUpdate{
			LotID:            lotID,
			ExpectedQuantity: decimal.NewFromInt(10),
			Quantity:         decimal.RequireFromString("7.5"),
			Status:           inventory.LotStatusAvailable,
		})
		require.NoError(t, err)

		lot := loadLot(t, db, lotID)
		assert.True(t, decimal.RequireFromString("7.5").Equal(lot.Quantity))
		assert.Equal(t, inventory.LotStatusAvailable, lot.Status)
	})

	t.Run("conflicts when the quantity moved", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormLotRepository(db)
		lotID := seedLot(t, db, seedFood(t, db, "Rice", "1"), "10", "")

		err := repo.CompareAndUpdate(ctx, inventory.LotUpdate{
			LotID:            lotID,
			ExpectedQuantity: decimal.NewFromInt(9),
			Quantity:         decimal.Zero,
			Status:           inventory.LotStatusUsed,
		})
		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.True(t, decimal.NewFromInt(10).Equal(loadLot(t, db, lotID).Quantity))
	})

	t.Run("conflicts when the lot is no longer available", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormLotRepository(db)
		lotID := seedLot(t, db, seedFood(t, db, "Rice", "1"), "4", "")

		reason := "spoiled"
		at := time.Now()
		require.NoError(t, repo.CompareAndUpdate(ctx, inventory.LotUpdate{
			LotID:            lotID,
			ExpectedQuantity: decimal.NewFromInt(4),
			Quantity:         decimal.NewFromInt(4),
			Status:           inventory.LotStatusDiscarded,
			DiscardReason:    &reason,
			DiscardedAt:      &at,
		}))

		err := repo.CompareAndUpdate(ctx, inventory.LotUpdate{
			LotID:            lotID,
			ExpectedQuantity: decimal.NewFromInt(4),
			Quantity:         decimal.Zero,
			Status:           inventory.LotStatusUsed,
		})
		assert.True(t, shared.IsConcurrencyConflict(err))

		lot := loadLot(t, db, lotID)
		assert.Equal(t, inventory.LotStatusDiscarded, lot.Status)
		require.NotNil(t, lot.DiscardReason)
		assert.Equal(t, "spoiled", *lot.DiscardReason)
	})

	t.Run("rejects an update that breaks lot invariants", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormLotRepository(db)

		err := repo.CompareAndUpdate(ctx, inventory.LotUpdate{
			LotID:            1,
			ExpectedQuantity: decimal.NewFromInt(1),
			Quantity:         decimal.NewFromInt(-1),
			Status:           inventory.LotStatusAvailable,
		})
		assert.Error(t, err)
		assert.False(t, shared.IsConcurrencyConflict(err))
	})
}

func TestGormLotRepository_CompareAndUpdateSQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}),
		&gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	repo := NewGormLotRepository(db)

	mock.ExpectExec(`UPDATE "lots" SET "quantity"=\$1,"status"=\$2 WHERE id = \$3 AND status = \$4 AND quantity = \$5`).
		WithArgs("7", "AVAILABLE", int64(5), "AVAILABLE", "10").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.CompareAndUpdate(context.Background(), inventory.LotUpdate{
		LotID:            5,
		ExpectedQuantity: decimal.NewFromInt(10),
		Quantity:         decimal.NewFromInt(7),
		Status:           inventory.LotStatusAvailable,
	})
	assert.True(t, shared.IsConcurrencyConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
