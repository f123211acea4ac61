package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertBatch(t *testing.T, db *gorm.DB, quantity int, createdBy string, items map[int64]string) *basket.BasketBatch {
	t.Helper()

	batch := &basket.BasketBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BasketQuantity:    quantity,
	}
	if createdBy != "" {
		batch.CreatedBy = &createdBy
	}
	for foodID, qty := range items {
		batch.Items = append(batch.Items, basket.BasketItem{
			FoodID:        foodID,
			TotalQuantity: decimal.RequireFromString(qty),
		})
	}

	repo := NewGormBasketBatchRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.InsertBatch(ctx, batch))
	batch.Recorded(batch.ID)
	require.NoError(t, repo.InsertItems(ctx, batch.Items))
	return batch
}

func TestGormBasketBatchRepository_InsertAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBasketBatchRepository(db)
	ctx := context.Background()

	rice := seedFood(t, db, "Rice", "2")
	beans := seedFood(t, db, "Beans", "1")

	batch := insertBatch(t, db, 3, "ana@foodbank.org", map[int64]string{rice: "6", beans: "3"})
	require.NotZero(t, batch.ID)
	for _, item := range batch.Items {
		assert.NotZero(t, item.ID)
		assert.Equal(t, batch.ID, item.BasketBatchID)
	}

	found, err := repo.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.BasketQuantity)
	require.NotNil(t, found.CreatedBy)
	assert.Equal(t, "ana@foodbank.org", *found.CreatedBy)
	require.Len(t, found.Items, 2)

	names := map[int64]string{}
	for _, item := range found.Items {
		names[item.FoodID] = item.FoodName
	}
	assert.Equal(t, "Rice", names[rice])
	assert.Equal(t, "Beans", names[beans])
	assert.True(t, decimal.NewFromInt(6).Equal(found.TotalQuantity(rice)))
}

func TestGormBasketBatchRepository_FindByIDNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewGormBasketBatchRepository(db).FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBasketBatchRepository_InsertItemsEmpty(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, NewGormBasketBatchRepository(db).InsertItems(context.Background(), nil))
}

func TestGormBasketBatchRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBasketBatchRepository(db)
	ctx := context.Background()

	rice := seedFood(t, db, "Rice", "1")
	var ids []int64
	for i := 1; i <= 3; i++ {
		ids = append(ids, insertBatch(t, db, i, "", map[int64]string{rice: "1"}).ID)
	}

	batches, total, err := repo.List(ctx, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, batches, 2)
	assert.Equal(t, ids[2], batches[0].ID)
	assert.Equal(t, ids[1], batches[1].ID)
	assert.Empty(t, batches[0].Items)

	batches, _, err = repo.List(ctx, shared.Filter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, ids[0], batches[0].ID)
}

func TestGormBasketDeliveryRepository_InsertAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBasketDeliveryRepository(db)
	ctx := context.Background()

	rice := seedFood(t, db, "Rice", "2")
	deliveredAt := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)

	delivery, err := basket.NewBasketDelivery("Maria Silva", deliveredAt, "two baskets", "ana@foodbank.org",
		[]basket.DeliveryLine{{FoodID: rice, Quantity: decimal.NewFromInt(4)}})
	require.NoError(t, err)

	require.NoError(t, repo.InsertDelivery(ctx, delivery))
	delivery.Recorded(delivery.ID)
	require.NoError(t, repo.InsertItems(ctx, delivery.Items))

	found, err := repo.FindByID(ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", found.RecipientName)
	assert.True(t, deliveredAt.Equal(found.DeliveredAt))
	require.NotNil(t, found.Notes)
	assert.Equal(t, "two baskets", *found.Notes)
	require.Len(t, found.Items, 1)
	assert.Equal(t, rice, found.Items[0].FoodID)
	assert.True(t, decimal.NewFromInt(4).Equal(found.Items[0].Quantity))

	_, err = repo.FindByID(ctx, delivery.ID+100)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormFoodRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormFoodRepository(db)
	ctx := context.Background()

	rice := seedFood(t, db, "Rice", "2")
	beans := seedFood(t, db, "Beans", "")
	soap := seedFood(t, db, "Soap", "")

	// Beans is in the basket with no configured quantity
	require.NoError(t, db.Exec("UPDATE foods SET in_basket = ? WHERE id = ?", true, beans).Error)

	t.Run("FindBasketFoods returns basket foods only", func(t *testing.T) {
		foods, err := repo.FindBasketFoods(ctx)
		require.NoError(t, err)
		var ids []int64
		for _, f := range foods {
			ids = append(ids, f.ID)
		}
		assert.ElementsMatch(t, []int64{rice, beans}, ids)
		assert.NotContains(t, ids, soap)
	})

	t.Run("missing per basket quantity defaults to one", func(t *testing.T) {
		food, err := repo.FindByID(ctx, beans)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1).Equal(food.PerBasketQuantity()))
	})

	t.Run("FindByIDs skips unknown ids", func(t *testing.T) {
		foods, err := repo.FindByIDs(ctx, []int64{rice, 404})
		require.NoError(t, err)
		require.Len(t, foods, 1)
		assert.Equal(t, "Rice", foods[0].Name)
	})

	t.Run("FindByID not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 404)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
