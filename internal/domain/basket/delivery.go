package basket

import (
	"strings"
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BasketDelivery records the handover of basket contents to a recipient
type BasketDelivery struct {
	shared.BaseAggregateRoot
	RecipientName string
	DeliveredAt   time.Time
	Notes         *string
	CreatedBy     *string
	Items         []DeliveryItem
}

// DeliveryItem is a quantity of one food handed over in a delivery
type DeliveryItem struct {
	ID         int64
	DeliveryID int64
	FoodID     int64
	FoodName   string
	Quantity   decimal.Decimal
}

// DeliveryLine is a requested delivery item before validation
type DeliveryLine struct {
	FoodID   int64
	Quantity decimal.Decimal
}

// NewBasketDelivery validates and builds a delivery. Lines without a food or
// with a non-positive quantity are dropped; at least one must remain.
func NewBasketDelivery(recipientName string, deliveredAt time.Time, notes, createdBy string, lines []DeliveryLine) (*BasketDelivery, error) {
	recipientName = strings.TrimSpace(recipientName)
	if recipientName == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Recipient name is required")
	}
	if len(recipientName) > 200 {
		return nil, shared.ErrInvalidInput.WithMessage("Recipient name cannot exceed 200 characters")
	}
	if deliveredAt.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("Delivery date is required")
	}
	if len(lines) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("At least one delivered food is required")
	}

	delivery := &BasketDelivery{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RecipientName:     recipientName,
		DeliveredAt:       deliveredAt,
		CreatedBy:         normalizeActor(createdBy),
	}
	if n := strings.TrimSpace(notes); n != "" {
		delivery.Notes = &n
	}

	for _, line := range lines {
		if line.FoodID <= 0 || !line.Quantity.IsPositive() {
			continue
		}
		delivery.Items = append(delivery.Items, DeliveryItem{
			FoodID:   line.FoodID,
			Quantity: line.Quantity,
		})
	}
	if len(delivery.Items) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("No valid delivered food was provided")
	}

	return delivery, nil
}

// Recorded stamps the store-assigned delivery ID onto the items and raises
// the registered event
func (d *BasketDelivery) Recorded(id int64) {
	d.ID = id
	for i := range d.Items {
		d.Items[i].DeliveryID = id
	}
	d.AddDomainEvent(NewDeliveryRegisteredEvent(d))
}
