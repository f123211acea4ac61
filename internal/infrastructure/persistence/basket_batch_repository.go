package persistence

import (
	"context"
	"errors"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBasketBatchRepository implements BatchRepository using GORM
type GormBasketBatchRepository struct {
	db *gorm.DB
}

// NewGormBasketBatchRepository creates a new GormBasketBatchRepository
func NewGormBasketBatchRepository(db *gorm.DB) *GormBasketBatchRepository {
	return &GormBasketBatchRepository{db: db}
}

// InsertBatch inserts the batch header and assigns its ID
func (r *GormBasketBatchRepository) InsertBatch(ctx context.Context, batch *basket.BasketBatch) error {
	model := &models.BasketBatchModel{}
	model.FromDomain(batch)
	if err := r.db.WithContext(ctx).Omit("Items").Create(model).Error; err != nil {
		return err
	}
	batch.ID = model.ID
	batch.CreatedAt = model.CreatedAt
	return nil
}

// InsertItems inserts batch items in one statement and writes back their IDs
func (r *GormBasketBatchRepository) InsertItems(ctx context.Context, items []basket.BasketItem) error {
	if len(items) == 0 {
		return nil
	}

	itemModels := make([]*models.BasketItemModel, len(items))
	for i := range items {
		itemModels[i] = models.BasketItemModelFromDomain(&items[i])
	}
	if err := r.db.WithContext(ctx).Omit("Food").Create(&itemModels).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = itemModels[i].ID
	}
	return nil
}

// FindByID loads a batch with its items and their food names
func (r *GormBasketBatchRepository) FindByID(ctx context.Context, id int64) (*basket.BasketBatch, error) {
	var model models.BasketBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("basket_items.id ASC") }).
		Preload("Items.Food").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns batch headers, newest first
func (r *GormBasketBatchRepository) List(ctx context.Context, filter shared.Filter) ([]basket.BasketBatch, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.BasketBatchModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batchModels []models.BasketBatchModel
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&batchModels).Error; err != nil {
		return nil, 0, err
	}

	batches := make([]basket.BasketBatch, len(batchModels))
	for i := range batchModels {
		batches[i] = *batchModels[i].ToDomain()
	}
	return batches, total, nil
}

// Ensure GormBasketBatchRepository implements BatchRepository
var _ basket.BatchRepository = (*GormBasketBatchRepository)(nil)
