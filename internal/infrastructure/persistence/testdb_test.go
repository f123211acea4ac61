package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database with every model migrated.
// A single connection keeps all statements on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func seedFood(t *testing.T, db *gorm.DB, name string, perBasket string) int64 {
	t.Helper()

	food, err := catalog.NewFood(name, "Grains", "kg")
	require.NoError(t, err)
	if perBasket != "" {
		qty := decimal.RequireFromString(perBasket)
		food.IncludeInBasket(&qty)
	}
	require.NoError(t, NewGormFoodRepository(db).Save(context.Background(), food))
	return food.ID
}

func seedLot(t *testing.T, db *gorm.DB, foodID int64, qty string, expiry string) int64 {
	t.Helper()

	var expiryDate *time.Time
	if expiry != "" {
		d, err := time.Parse("2006-01-02", expiry)
		require.NoError(t, err)
		expiryDate = &d
	}
	lot, err := inventory.NewLot(foodID, decimal.RequireFromString(qty), expiryDate, "")
	require.NoError(t, err)
	require.NoError(t, NewGormLotRepository(db).Save(context.Background(), lot))
	return lot.ID
}

func loadLot(t *testing.T, db *gorm.DB, id int64) *inventory.Lot {
	t.Helper()

	lot, err := NewGormLotRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return lot
}
