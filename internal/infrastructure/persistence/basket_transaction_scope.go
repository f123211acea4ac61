package persistence

import (
	"context"

	appbasket "github.com/foodbank/backend/internal/application/basket"
	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every repository handed to the callback shares one database transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbasket.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Lots returns the lot repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Lots() inventory.LotRepository {
	return NewGormLotRepository(r.tx)
}

// Batches returns the basket batch repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Batches() basket.BatchRepository {
	return NewGormBasketBatchRepository(r.tx)
}

// Deliveries returns the delivery repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Deliveries() basket.DeliveryRepository {
	return NewGormBasketDeliveryRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbasket.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbasket.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
