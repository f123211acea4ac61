package basket

import (
	"context"

	"github.com/foodbank/backend/internal/domain/shared"
)

// BatchRepository defines the interface for basket batch persistence
type BatchRepository interface {
	// InsertBatch inserts the batch header and assigns its ID
	InsertBatch(ctx context.Context, batch *BasketBatch) error

	// InsertItems inserts the items of a recorded batch
	InsertItems(ctx context.Context, items []BasketItem) error

	// FindByID loads a batch with its items
	FindByID(ctx context.Context, id int64) (*BasketBatch, error)

	// List returns batch headers, newest first, with the total count
	List(ctx context.Context, filter shared.Filter) ([]BasketBatch, int64, error)
}

// DeliveryRepository defines the interface for delivery persistence
type DeliveryRepository interface {
	// InsertDelivery inserts the delivery header and assigns its ID
	InsertDelivery(ctx context.Context, delivery *BasketDelivery) error

	// InsertItems inserts the items of a recorded delivery
	InsertItems(ctx context.Context, items []DeliveryItem) error

	// FindByID loads a delivery with its items
	FindByID(ctx context.Context, id int64) (*BasketDelivery, error)
}
