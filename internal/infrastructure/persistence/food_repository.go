package persistence

import (
	"context"
	"errors"

	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFoodRepository implements FoodRepository using GORM
type GormFoodRepository struct {
	db *gorm.DB
}

// NewGormFoodRepository creates a new GormFoodRepository
func NewGormFoodRepository(db *gorm.DB) *GormFoodRepository {
	return &GormFoodRepository{db: db}
}

// FindByID finds a food by its ID
func (r *GormFoodRepository) FindByID(ctx context.Context, id int64) (*catalog.Food, error) {
	var model models.FoodModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds foods by IDs
func (r *GormFoodRepository) FindByIDs(ctx context.Context, ids []int64) ([]catalog.Food, error) {
	if len(ids) == 0 {
		return []catalog.Food{}, nil
	}

	var foodModels []models.FoodModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&foodModels).Error; err != nil {
		return nil, err
	}
	return foodsToDomain(foodModels), nil
}

// FindBasketFoods returns all foods that are part of the basket composition
func (r *GormFoodRepository) FindBasketFoods(ctx context.Context) ([]catalog.Food, error) {
	var foodModels []models.FoodModel
	if err := r.db.WithContext(ctx).
		Where("in_basket = ?", true).
		Order("id ASC").
		Find(&foodModels).Error; err != nil {
		return nil, err
	}
	return foodsToDomain(foodModels), nil
}

// Save creates or updates a food
func (r *GormFoodRepository) Save(ctx context.Context, food *catalog.Food) error {
	model := models.FoodModelFromDomain(food)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	food.ID = model.ID
	food.CreatedAt = model.CreatedAt
	return nil
}

func foodsToDomain(foodModels []models.FoodModel) []catalog.Food {
	foods := make([]catalog.Food, len(foodModels))
	for i := range foodModels {
		foods[i] = *foodModels[i].ToDomain()
	}
	return foods
}

// Ensure GormFoodRepository implements FoodRepository
var _ catalog.FoodRepository = (*GormFoodRepository)(nil)
