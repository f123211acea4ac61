package models

import (
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
}

// aggregateRoot rebuilds a domain aggregate root from persisted base fields
func (m *BaseModel) aggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.ToDomain()}
}

// AllModels returns every persistence model, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&FoodModel{},
		&LotModel{},
		&BasketBatchModel{},
		&BasketItemModel{},
		&BasketDeliveryModel{},
		&BasketDeliveryItemModel{},
	}
}
