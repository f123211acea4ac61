package basket

import (
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeBasketBatch    = "BasketBatch"
	AggregateTypeBasketDelivery = "BasketDelivery"
)

// Event type constants
const (
	EventTypeBasketBatchAssembled = "basket.batch_assembled"
	EventTypeDeliveryRegistered   = "basket.delivery_registered"
)

// ConsumedFood is the per-food total carried by the assembled event
type ConsumedFood struct {
	FoodID   int64           `json:"food_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// BasketBatchAssembledEvent is raised when a batch has been committed
type BasketBatchAssembledEvent struct {
	shared.BaseDomainEvent
	BatchID        int64          `json:"batch_id"`
	BasketQuantity int            `json:"basket_quantity"`
	CreatedBy      string         `json:"created_by,omitempty"`
	Items          []ConsumedFood `json:"items"`
}

// NewBasketBatchAssembledEvent creates a new BasketBatchAssembledEvent
func NewBasketBatchAssembledEvent(b *BasketBatch) *BasketBatchAssembledEvent {
	items := make([]ConsumedFood, len(b.Items))
	for i, item := range b.Items {
		items[i] = ConsumedFood{FoodID: item.FoodID, Quantity: item.TotalQuantity}
	}
	createdBy := ""
	if b.CreatedBy != nil {
		createdBy = *b.CreatedBy
	}
	return &BasketBatchAssembledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBasketBatchAssembled, AggregateTypeBasketBatch, b.ID),
		BatchID:         b.ID,
		BasketQuantity:  b.BasketQuantity,
		CreatedBy:       createdBy,
		Items:           items,
	}
}

// FoodIDs returns the IDs of the foods consumed by the batch
func (e *BasketBatchAssembledEvent) FoodIDs() []int64 {
	ids := make([]int64, len(e.Items))
	for i, item := range e.Items {
		ids[i] = item.FoodID
	}
	return ids
}

// DeliveryRegisteredEvent is raised when a delivery has been recorded
type DeliveryRegisteredEvent struct {
	shared.BaseDomainEvent
	DeliveryID    int64  `json:"delivery_id"`
	RecipientName string `json:"recipient_name"`
	ItemCount     int    `json:"item_count"`
}

// NewDeliveryRegisteredEvent creates a new DeliveryRegisteredEvent
func NewDeliveryRegisteredEvent(d *BasketDelivery) *DeliveryRegisteredEvent {
	return &DeliveryRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryRegistered, AggregateTypeBasketDelivery, d.ID),
		DeliveryID:      d.ID,
		RecipientName:   d.RecipientName,
		ItemCount:       len(d.Items),
	}
}
