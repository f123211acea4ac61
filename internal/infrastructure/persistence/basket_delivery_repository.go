package persistence

import (
	"context"
	"errors"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBasketDeliveryRepository implements DeliveryRepository using GORM
type GormBasketDeliveryRepository struct {
	db *gorm.DB
}

// NewGormBasketDeliveryRepository creates a new GormBasketDeliveryRepository
func NewGormBasketDeliveryRepository(db *gorm.DB) *GormBasketDeliveryRepository {
	return &GormBasketDeliveryRepository{db: db}
}

// InsertDelivery inserts the delivery header and assigns its ID
func (r *GormBasketDeliveryRepository) InsertDelivery(ctx context.Context, delivery *basket.BasketDelivery) error {
	model := &models.BasketDeliveryModel{}
	model.FromDomain(delivery)
	if err := r.db.WithContext(ctx).Omit("Items").Create(model).Error; err != nil {
		return err
	}
	delivery.ID = model.ID
	delivery.CreatedAt = model.CreatedAt
	return nil
}

// InsertItems inserts delivery items and writes back their IDs
func (r *GormBasketDeliveryRepository) InsertItems(ctx context.Context, items []basket.DeliveryItem) error {
	if len(items) == 0 {
		return nil
	}

	itemModels := make([]*models.BasketDeliveryItemModel, len(items))
	for i := range items {
		itemModels[i] = models.BasketDeliveryItemModelFromDomain(&items[i])
	}
	if err := r.db.WithContext(ctx).Omit("Food").Create(&itemModels).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = itemModels[i].ID
	}
	return nil
}

// FindByID loads a delivery with its items and their food names
func (r *GormBasketDeliveryRepository) FindByID(ctx context.Context, id int64) (*basket.BasketDelivery, error) {
	var model models.BasketDeliveryModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("basket_delivery_items.id ASC") }).
		Preload("Items.Food").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormBasketDeliveryRepository implements DeliveryRepository
var _ basket.DeliveryRepository = (*GormBasketDeliveryRepository)(nil)
