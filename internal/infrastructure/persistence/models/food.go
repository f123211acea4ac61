package models

import (
	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// FoodModel is the persistence model for the Food catalog entity.
type FoodModel struct {
	BaseModel
	Name         string           `gorm:"type:varchar(200);not null"`
	Category     string           `gorm:"type:varchar(100);not null;default:''"`
	Unit         string           `gorm:"type:varchar(20);not null"`
	Perishable   bool             `gorm:"not null;default:false"`
	InBasket     bool             `gorm:"not null;default:false;index"`
	QtyPerBasket *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (FoodModel) TableName() string {
	return "foods"
}

// ToDomain converts the persistence model to a domain Food entity.
func (m *FoodModel) ToDomain() *catalog.Food {
	return &catalog.Food{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Category:     m.Category,
		Unit:         m.Unit,
		Perishable:   m.Perishable,
		InBasket:     m.InBasket,
		QtyPerBasket: m.QtyPerBasket,
	}
}

// FromDomain populates the persistence model from a domain Food entity.
func (m *FoodModel) FromDomain(f *catalog.Food) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.Name = f.Name
	m.Category = f.Category
	m.Unit = f.Unit
	m.Perishable = f.Perishable
	m.InBasket = f.InBasket
	m.QtyPerBasket = f.QtyPerBasket
}

// FoodModelFromDomain creates a persistence model from a domain Food entity.
func FoodModelFromDomain(f *catalog.Food) *FoodModel {
	m := &FoodModel{}
	m.FromDomain(f)
	return m
}
