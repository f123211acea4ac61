package models

import (
	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/shopspring/decimal"
)

// BasketBatchModel is the persistence model for the BasketBatch aggregate root.
type BasketBatchModel struct {
	BaseModel
	BasketQuantity int               `gorm:"not null"`
	CreatedBy      *string           `gorm:"type:varchar(200)"`
	Items          []BasketItemModel `gorm:"foreignKey:BasketBatchID;references:ID"`
}

// TableName returns the table name for GORM
func (BasketBatchModel) TableName() string {
	return "basket_batches"
}

// ToDomain converts the persistence model to a domain BasketBatch.
// Items are included only if they were preloaded.
func (m *BasketBatchModel) ToDomain() *basket.BasketBatch {
	b := &basket.BasketBatch{
		BaseAggregateRoot: m.aggregateRoot(),
		BasketQuantity:    m.BasketQuantity,
		CreatedBy:         m.CreatedBy,
		Items:             make([]basket.BasketItem, len(m.Items)),
	}
	for i, item := range m.Items {
		b.Items[i] = *item.ToDomain()
	}
	return b
}

// FromDomain populates the header fields from a domain BasketBatch.
// Items are persisted separately.
func (m *BasketBatchModel) FromDomain(b *basket.BasketBatch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.BasketQuantity = b.BasketQuantity
	m.CreatedBy = b.CreatedBy
}

// BasketItemModel is the persistence model for a BasketItem.
type BasketItemModel struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	BasketBatchID int64           `gorm:"not null;index"`
	FoodID        int64           `gorm:"not null;index"`
	TotalQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Food          *FoodModel      `gorm:"foreignKey:FoodID;references:ID"`
}

// TableName returns the table name for GORM
func (BasketItemModel) TableName() string {
	return "basket_items"
}

// ToDomain converts the persistence model to a domain BasketItem.
func (m *BasketItemModel) ToDomain() *basket.BasketItem {
	item := &basket.BasketItem{
		ID:            m.ID,
		BasketBatchID: m.BasketBatchID,
		FoodID:        m.FoodID,
		TotalQuantity: m.TotalQuantity,
	}
	if m.Food != nil {
		item.FoodName = m.Food.Name
	}
	return item
}

// BasketItemModelFromDomain creates a persistence model from a domain BasketItem.
func BasketItemModelFromDomain(item *basket.BasketItem) *BasketItemModel {
	return &BasketItemModel{
		ID:            item.ID,
		BasketBatchID: item.BasketBatchID,
		FoodID:        item.FoodID,
		TotalQuantity: item.TotalQuantity,
	}
}
