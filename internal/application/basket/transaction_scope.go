package basket

import (
	"context"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the repositories that a
// basket run writes to. All lot updates and batch inserts made through the
// repositories passed to fn commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// Lots returns the lot repository scoped to the current transaction
	Lots() inventory.LotRepository
	// Batches returns the basket batch repository scoped to the current transaction
	Batches() basket.BatchRepository
	// Deliveries returns the delivery repository scoped to the current transaction
	Deliveries() basket.DeliveryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	lotRepo      inventory.LotRepository
	batchRepo    basket.BatchRepository
	deliveryRepo basket.DeliveryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	lotRepo inventory.LotRepository,
	batchRepo basket.BatchRepository,
	deliveryRepo basket.DeliveryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:      lotRepo,
		batchRepo:    batchRepo,
		deliveryRepo: deliveryRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Lots returns the lot repository.
func (s *NoOpTransactionScope) Lots() inventory.LotRepository {
	return s.lotRepo
}

// Batches returns the basket batch repository.
func (s *NoOpTransactionScope) Batches() basket.BatchRepository {
	return s.batchRepo
}

// Deliveries returns the delivery repository.
func (s *NoOpTransactionScope) Deliveries() basket.DeliveryRepository {
	return s.deliveryRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
