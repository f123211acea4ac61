package models

import (
	"time"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/shopspring/decimal"
)

// BasketDeliveryModel is the persistence model for the BasketDelivery aggregate root.
type BasketDeliveryModel struct {
	BaseModel
	RecipientName string                    `gorm:"type:varchar(200);not null"`
	DeliveredAt   time.Time                 `gorm:"not null;index"`
	Notes         *string                   `gorm:"type:text"`
	CreatedBy     *string                   `gorm:"type:varchar(200)"`
	Items         []BasketDeliveryItemModel `gorm:"foreignKey:DeliveryID;references:ID"`
}

// TableName returns the table name for GORM
func (BasketDeliveryModel) TableName() string {
	return "basket_deliveries"
}

// ToDomain converts the persistence model to a domain BasketDelivery.
func (m *BasketDeliveryModel) ToDomain() *basket.BasketDelivery {
	d := &basket.BasketDelivery{
		BaseAggregateRoot: m.aggregateRoot(),
		RecipientName:     m.RecipientName,
		DeliveredAt:       m.DeliveredAt,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		Items:             make([]basket.DeliveryItem, len(m.Items)),
	}
	for i, item := range m.Items {
		d.Items[i] = *item.ToDomain()
	}
	return d
}

// FromDomain populates the header fields from a domain BasketDelivery.
func (m *BasketDeliveryModel) FromDomain(d *basket.BasketDelivery) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.RecipientName = d.RecipientName
	m.DeliveredAt = d.DeliveredAt
	m.Notes = d.Notes
	m.CreatedBy = d.CreatedBy
}

// BasketDeliveryItemModel is the persistence model for a DeliveryItem.
type BasketDeliveryItemModel struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	DeliveryID int64           `gorm:"not null;index"`
	FoodID     int64           `gorm:"not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Food       *FoodModel      `gorm:"foreignKey:FoodID;references:ID"`
}

// TableName returns the table name for GORM
func (BasketDeliveryItemModel) TableName() string {
	return "basket_delivery_items"
}

// ToDomain converts the persistence model to a domain DeliveryItem.
func (m *BasketDeliveryItemModel) ToDomain() *basket.DeliveryItem {
	item := &basket.DeliveryItem{
		ID:         m.ID,
		DeliveryID: m.DeliveryID,
		FoodID:     m.FoodID,
		Quantity:   m.Quantity,
	}
	if m.Food != nil {
		item.FoodName = m.Food.Name
	}
	return item
}

// BasketDeliveryItemModelFromDomain creates a persistence model from a domain DeliveryItem.
func BasketDeliveryItemModelFromDomain(item *basket.DeliveryItem) *BasketDeliveryItemModel {
	return &BasketDeliveryItemModel{
		ID:         item.ID,
		DeliveryID: item.DeliveryID,
		FoodID:     item.FoodID,
		Quantity:   item.Quantity,
	}
}
