package models

import (
	"time"

	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LotModel is the persistence model for the Lot aggregate root.
type LotModel struct {
	BaseModel
	FoodID        int64           `gorm:"not null;index:idx_lots_food_status,priority:1"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpiryDate    *time.Time      `gorm:"type:date;index"`
	Status        string          `gorm:"type:varchar(20);not null;default:'AVAILABLE';index:idx_lots_food_status,priority:2"`
	ReceivedAt    time.Time       `gorm:"not null"`
	DonorName     *string         `gorm:"type:varchar(200)"`
	DiscardReason *string         `gorm:"type:text"`
	DiscardedAt   *time.Time
}

// TableName returns the table name for GORM
func (LotModel) TableName() string {
	return "lots"
}

// ToDomain converts the persistence model to a domain Lot entity.
func (m *LotModel) ToDomain() *inventory.Lot {
	return &inventory.Lot{
		BaseAggregateRoot: m.aggregateRoot(),
		FoodID:            m.FoodID,
		Quantity:          m.Quantity,
		ExpiryDate:        m.ExpiryDate,
		Status:            inventory.LotStatus(m.Status),
		ReceivedAt:        m.ReceivedAt,
		DonorName:         m.DonorName,
		DiscardReason:     m.DiscardReason,
		DiscardedAt:       m.DiscardedAt,
	}
}

// FromDomain populates the persistence model from a domain Lot entity.
func (m *LotModel) FromDomain(l *inventory.Lot) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.FoodID = l.FoodID
	m.Quantity = l.Quantity
	m.ExpiryDate = l.ExpiryDate
	m.Status = string(l.Status)
	m.ReceivedAt = l.ReceivedAt
	if m.ReceivedAt.IsZero() {
		m.ReceivedAt = m.CreatedAt
	}
	m.DonorName = l.DonorName
	m.DiscardReason = l.DiscardReason
	m.DiscardedAt = l.DiscardedAt
}

// LotModelFromDomain creates a persistence model from a domain Lot entity.
func LotModelFromDomain(l *inventory.Lot) *LotModel {
	m := &LotModel{}
	m.FromDomain(l)
	return m
}
