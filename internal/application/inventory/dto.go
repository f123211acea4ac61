package inventory

import (
	"time"

	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// DiscardLotRequest represents a request to withdraw a lot from stock
type DiscardLotRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ExpiringLotsFilter selects the expiry window to look at
type ExpiringLotsFilter struct {
	Filter string `form:"filter" binding:"omitempty,oneof=expired 7days 30days"`
}

// LotResponse represents a lot in API responses
type LotResponse struct {
	ID            int64           `json:"id"`
	FoodID        int64           `json:"food_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	Status        string          `json:"status"`
	ReceivedAt    time.Time       `json:"received_at"`
	DonorName     *string         `json:"donor_name,omitempty"`
	DiscardReason *string         `json:"discard_reason,omitempty"`
	DiscardedAt   *time.Time      `json:"discarded_at,omitempty"`
}

// ExpiringLotResponse is an AVAILABLE lot close to or past its expiry date
type ExpiringLotResponse struct {
	LotID           int64           `json:"lot_id"`
	FoodID          int64           `json:"food_id"`
	FoodName        string          `json:"food_name"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	DaysUntilExpiry int             `json:"days_until_expiry"`
}

// ExpiringLotsResponse splits expiring lots into those already expired and
// those about to expire
type ExpiringLotsResponse struct {
	Window   string                `json:"window"`
	Cutoff   time.Time             `json:"cutoff"`
	Expired  []ExpiringLotResponse `json:"expired"`
	Expiring []ExpiringLotResponse `json:"expiring"`
}

// ToLotResponse converts a domain Lot to a response DTO
func ToLotResponse(l *inventory.Lot) LotResponse {
	return LotResponse{
		ID:            l.ID,
		FoodID:        l.FoodID,
		Quantity:      l.Quantity,
		ExpiryDate:    l.ExpiryDate,
		Status:        l.Status.String(),
		ReceivedAt:    l.ReceivedAt,
		DonorName:     l.DonorName,
		DiscardReason: l.DiscardReason,
		DiscardedAt:   l.DiscardedAt,
	}
}
