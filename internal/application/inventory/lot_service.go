package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LotService handles lot operations outside basket assembly
type LotService struct {
	lotRepo        inventory.LotRepository
	foodRepo       catalog.FoodRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewLotService creates a new LotService
func NewLotService(lotRepo inventory.LotRepository, foodRepo catalog.FoodRepository, logger *zap.Logger) *LotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LotService{
		lotRepo:  lotRepo,
		foodRepo: foodRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LotService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// DiscardLot withdraws an AVAILABLE lot from stock. The write is guarded the
// same way as basket allocation, so a lot consumed in the meantime yields a
// concurrency conflict instead of being discarded.
func (s *LotService) DiscardLot(ctx context.Context, lotID int64, req DiscardLotRequest) (*LotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "lot", "discard", telemetry.SpanAttrLotID, lotID)
	defer span.End()

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	update, err := lot.Discard(req.Reason, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.lotRepo.CompareAndUpdate(ctx, update); err != nil {
		return nil, err
	}

	s.logger.Info("Lot discarded",
		zap.Int64("lot_id", lot.ID),
		zap.Int64("food_id", lot.FoodID),
		zap.String("quantity", lot.Quantity.String()),
		zap.String("reason", *lot.DiscardReason))

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, lot.GetDomainEvents()...); err != nil {
			s.logger.Error("Failed to publish lot events", zap.Int64("lot_id", lot.ID), zap.Error(err))
		}
	}
	lot.ClearDomainEvents()

	resp := ToLotResponse(lot)
	return &resp, nil
}

// ListExpiringLots returns AVAILABLE lots expiring within the window,
// split into expired and still-usable lots, soonest first
func (s *LotService) ListExpiringLots(ctx context.Context, window inventory.ExpiryWindow) (*ExpiringLotsResponse, error) {
	today := inventory.Today(s.now())
	cutoff := window.Cutoff(today)

	lots, err := s.lotRepo.FindAvailableExpiringBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load expiring lots: %w", err)
	}

	foods, err := s.foodsOf(ctx, lots)
	if err != nil {
		return nil, err
	}

	resp := &ExpiringLotsResponse{
		Window:   string(window),
		Cutoff:   cutoff,
		Expired:  make([]ExpiringLotResponse, 0),
		Expiring: make([]ExpiringLotResponse, 0),
	}
	for i := range lots {
		lot := &lots[i]
		if lot.ExpiryDate == nil {
			continue
		}
		food := foods[lot.FoodID]
		entry := ExpiringLotResponse{
			LotID:           lot.ID,
			FoodID:          lot.FoodID,
			FoodName:        food.Name,
			Unit:            food.Unit,
			Quantity:        lot.Quantity,
			ExpiryDate:      *lot.ExpiryDate,
			DaysUntilExpiry: inventory.DaysUntilExpiry(*lot.ExpiryDate, today),
		}
		if lot.IsExpired(today) {
			resp.Expired = append(resp.Expired, entry)
		} else {
			resp.Expiring = append(resp.Expiring, entry)
		}
	}
	return resp, nil
}

func (s *LotService) foodsOf(ctx context.Context, lots []inventory.Lot) (map[int64]catalog.Food, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, l := range lots {
		if !seen[l.FoodID] {
			seen[l.FoodID] = true
			ids = append(ids, l.FoodID)
		}
	}
	byID := make(map[int64]catalog.Food, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	foods, err := s.foodRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load foods: %w", err)
	}
	for _, f := range foods {
		byID[f.ID] = f
	}
	return byID, nil
}
