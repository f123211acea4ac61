package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// consumptionOrder is the canonical lot consumption order: soonest expiry
// first, undated lots last, ties by ID. It is valid on PostgreSQL and SQLite.
const consumptionOrder = "expiry_date IS NULL, expiry_date ASC, id ASC"

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id int64) (*inventory.Lot, error) {
	var model models.LotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAvailableByFoods returns the AVAILABLE lots of the given foods in consumption order
func (r *GormLotRepository) FindAvailableByFoods(ctx context.Context, foodIDs []int64) ([]inventory.Lot, error) {
	if len(foodIDs) == 0 {
		return []inventory.Lot{}, nil
	}

	var lotModels []models.LotModel
	if err := r.db.WithContext(ctx).
		Where("food_id IN ? AND status = ?", foodIDs, string(inventory.LotStatusAvailable)).
		Order(consumptionOrder).
		Find(&lotModels).Error; err != nil {
		return nil, err
	}
	return lotsToDomain(lotModels), nil
}

// FindAvailableExpiringBefore returns AVAILABLE lots expiring before cutoff, soonest first
func (r *GormLotRepository) FindAvailableExpiringBefore(ctx context.Context, cutoff time.Time) ([]inventory.Lot, error) {
	var lotModels []models.LotModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", string(inventory.LotStatusAvailable), cutoff).
		Order(consumptionOrder).
		Find(&lotModels).Error; err != nil {
		return nil, err
	}
	return lotsToDomain(lotModels), nil
}

// Save inserts a new lot
func (r *GormLotRepository) Save(ctx context.Context, lot *inventory.Lot) error {
	model := models.LotModelFromDomain(lot)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	lot.ID = model.ID
	lot.CreatedAt = model.CreatedAt
	lot.ReceivedAt = model.ReceivedAt
	return nil
}

// CompareAndUpdate writes the new quantity and status only if the lot is
// still AVAILABLE with the quantity the caller read
func (r *GormLotRepository) CompareAndUpdate(ctx context.Context, update inventory.LotUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	values := map[string]interface{}{
		"quantity": update.Quantity,
		"status":   string(update.Status),
	}
	if update.DiscardReason != nil {
		values["discard_reason"] = *update.DiscardReason
	}
	if update.DiscardedAt != nil {
		values["discarded_at"] = *update.DiscardedAt
	}

	result := r.db.WithContext(ctx).
		Model(&models.LotModel{}).
		Where("id = ? AND status = ? AND quantity = ?",
			update.LotID, string(inventory.LotStatusAvailable), update.ExpectedQuantity).
		Updates(values)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage(
			fmt.Sprintf("Lot %d was modified by another transaction", update.LotID))
	}
	return nil
}

func lotsToDomain(lotModels []models.LotModel) []inventory.Lot {
	lots := make([]inventory.Lot, len(lotModels))
	for i := range lotModels {
		lots[i] = *lotModels[i].ToDomain()
	}
	return lots
}

// Ensure GormLotRepository implements LotRepository
var _ inventory.LotRepository = (*GormLotRepository)(nil)
