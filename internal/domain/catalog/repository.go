package catalog

import "context"

// FoodRepository defines the interface for food catalog persistence
type FoodRepository interface {
	// FindByID finds a food by ID
	FindByID(ctx context.Context, id int64) (*Food, error)

	// FindByIDs finds foods by IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []int64) ([]Food, error)

	// FindBasketFoods returns all foods flagged as part of the basket
	FindBasketFoods(ctx context.Context) ([]Food, error)

	// Save creates or updates a food
	Save(ctx context.Context, food *Food) error
}
