package basket

import (
	"time"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/shopspring/decimal"
)

// AssembleBasketsRequest is the input of a basket run.
// CreatedBy is the audit identity of the caller; it may be empty.
type AssembleBasketsRequest struct {
	Quantity       int
	CreatedBy      string
	IdempotencyKey string
}

// MissingFood reports how much of a food is lacking for a basket run
type MissingFood struct {
	FoodID          int64           `json:"food_id"`
	Name            string          `json:"name"`
	MissingQuantity decimal.Decimal `json:"missing_quantity"`
}

// AssemblyResult is the outcome of a basket run. A shortfall is a normal
// result with Success false and the missing foods listed.
type AssemblyResult struct {
	Success  bool          `json:"success"`
	BatchID  int64         `json:"batch_id,omitempty"`
	Missing  []MissingFood `json:"missing,omitempty"`
	Replayed bool          `json:"replayed,omitempty"`
}

// FoodAvailabilityResponse compares a food's requirement with its stock
type FoodAvailabilityResponse struct {
	FoodID    int64           `json:"food_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	PerBasket decimal.Decimal `json:"per_basket"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Missing   decimal.Decimal `json:"missing"`
}

// AvailabilityResponse is the read-only preview of a basket run
type AvailabilityResponse struct {
	BasketQuantity int                        `json:"basket_quantity"`
	CanAssemble    bool                       `json:"can_assemble"`
	MaxBaskets     int                        `json:"max_baskets"`
	Foods          []FoodAvailabilityResponse `json:"foods"`
	Missing        []MissingFood              `json:"missing,omitempty"`
}

// BasketItemResponse represents a batch item in API responses
type BasketItemResponse struct {
	ID            int64           `json:"id"`
	FoodID        int64           `json:"food_id"`
	FoodName      string          `json:"food_name,omitempty"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// BasketBatchResponse represents a basket batch in API responses
type BasketBatchResponse struct {
	ID             int64                `json:"id"`
	BasketQuantity int                  `json:"basket_quantity"`
	CreatedBy      *string              `json:"created_by,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	Items          []BasketItemResponse `json:"items,omitempty"`
}

// BatchListFilter represents filter options for the batch history
type BatchListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// DeliveryLineInput is one food handed over in a delivery
type DeliveryLineInput struct {
	FoodID   int64           `json:"food_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// RegisterDeliveryCommand is the input of a delivery registration
type RegisterDeliveryCommand struct {
	RecipientName string
	DeliveredAt   time.Time
	Notes         string
	CreatedBy     string
	Items         []DeliveryLineInput
}

// DeliveryItemResponse represents a delivery item in API responses
type DeliveryItemResponse struct {
	ID       int64           `json:"id"`
	FoodID   int64           `json:"food_id"`
	FoodName string          `json:"food_name,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DeliveryResponse represents a delivery in API responses
type DeliveryResponse struct {
	ID            int64                  `json:"id"`
	RecipientName string                 `json:"recipient_name"`
	DeliveredAt   time.Time              `json:"delivered_at"`
	Notes         *string                `json:"notes,omitempty"`
	CreatedBy     *string                `json:"created_by,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	Items         []DeliveryItemResponse `json:"items"`
}

// ToMissingFoods converts domain shortfalls to response DTOs
func ToMissingFoods(shortfalls []basket.Shortfall) []MissingFood {
	if len(shortfalls) == 0 {
		return nil
	}
	missing := make([]MissingFood, len(shortfalls))
	for i, s := range shortfalls {
		missing[i] = MissingFood{
			FoodID:          s.FoodID,
			Name:            s.Name,
			MissingQuantity: s.MissingQuantity,
		}
	}
	return missing
}

// ToAvailabilityResponse converts a domain availability report to a response DTO
func ToAvailabilityResponse(report basket.AvailabilityReport) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		BasketQuantity: report.BasketQuantity,
		CanAssemble:    report.IsSatisfied(),
		MaxBaskets:     report.MaxBaskets(),
		Foods:          make([]FoodAvailabilityResponse, len(report.Lines)),
		Missing:        ToMissingFoods(report.Shortfalls()),
	}
	for i, line := range report.Lines {
		resp.Foods[i] = FoodAvailabilityResponse{
			FoodID:    line.FoodID,
			Name:      line.Name,
			Unit:      line.Unit,
			PerBasket: line.PerBasket,
			Required:  line.Required,
			Available: line.Available,
			Missing:   line.Missing,
		}
	}
	return resp
}

// ToBasketBatchResponse converts a domain BasketBatch to a response DTO
func ToBasketBatchResponse(b *basket.BasketBatch) BasketBatchResponse {
	resp := BasketBatchResponse{
		ID:             b.ID,
		BasketQuantity: b.BasketQuantity,
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		Items:          make([]BasketItemResponse, len(b.Items)),
	}
	for i, item := range b.Items {
		resp.Items[i] = BasketItemResponse{
			ID:            item.ID,
			FoodID:        item.FoodID,
			FoodName:      item.FoodName,
			TotalQuantity: item.TotalQuantity,
		}
	}
	return resp
}

// ToDeliveryResponse converts a domain BasketDelivery to a response DTO
func ToDeliveryResponse(d *basket.BasketDelivery) DeliveryResponse {
	resp := DeliveryResponse{
		ID:            d.ID,
		RecipientName: d.RecipientName,
		DeliveredAt:   d.DeliveredAt,
		Notes:         d.Notes,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		Items:         make([]DeliveryItemResponse, len(d.Items)),
	}
	for i, item := range d.Items {
		resp.Items[i] = DeliveryItemResponse{
			ID:       item.ID,
			FoodID:   item.FoodID,
			FoodName: item.FoodName,
			Quantity: item.Quantity,
		}
	}
	return resp
}
