package basket

import (
	"context"
	"fmt"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultLowStockBaskets is the basket count below which a food is reported
const DefaultLowStockBaskets = 10

// LowStockAlert reports a basket food that can supply few baskets
type LowStockAlert struct {
	FoodID           int64  `json:"food_id"`
	Name             string `json:"name"`
	Available        string `json:"available"`
	PerBasket        string `json:"per_basket"`
	BasketsRemaining int64  `json:"baskets_remaining"`
	Threshold        int    `json:"threshold"`
}

// LowStockNotifier delivers low stock alerts
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, alerts []LowStockAlert) error
}

// LowStockRecorder publishes remaining stock figures as metrics
type LowStockRecorder interface {
	RecordLowStock(ctx context.Context, lowFoods int)
	RecordBasketsRemaining(ctx context.Context, foodID int64, name string, baskets int64)
}

// MetricsNotifier turns low stock alerts into metrics
type MetricsNotifier struct {
	Recorder LowStockRecorder
}

// NotifyLowStock implements LowStockNotifier
func (n MetricsNotifier) NotifyLowStock(ctx context.Context, alerts []LowStockAlert) error {
	n.Recorder.RecordLowStock(ctx, len(alerts))
	for _, a := range alerts {
		n.Recorder.RecordBasketsRemaining(ctx, a.FoodID, a.Name, a.BasketsRemaining)
	}
	return nil
}

// StockDepletionHandler recomputes how many baskets the remaining stock
// supports whenever stock leaves the shelves.
type StockDepletionHandler struct {
	foodRepo  catalog.FoodRepository
	lotRepo   inventory.LotRepository
	threshold int
	notifier  LowStockNotifier
	logger    *zap.Logger
}

// NewStockDepletionHandler creates a new StockDepletionHandler
func NewStockDepletionHandler(
	foodRepo catalog.FoodRepository,
	lotRepo inventory.LotRepository,
	threshold int,
	logger *zap.Logger,
) *StockDepletionHandler {
	if threshold <= 0 {
		threshold = DefaultLowStockBaskets
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockDepletionHandler{
		foodRepo:  foodRepo,
		lotRepo:   lotRepo,
		threshold: threshold,
		logger:    logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockDepletionHandler) WithNotifier(notifier LowStockNotifier) *StockDepletionHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockDepletionHandler) EventTypes() []string {
	return []string{
		basket.EventTypeBasketBatchAssembled,
		inventory.EventTypeLotDiscarded,
	}
}

// Handle processes stock consuming events
func (h *StockDepletionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var foodIDs []int64
	switch e := event.(type) {
	case *basket.BasketBatchAssembledEvent:
		foodIDs = e.FoodIDs()
	case *inventory.LotDiscardedEvent:
		foodIDs = []int64{e.FoodID}
	default:
		h.logger.Warn("StockDepletionHandler received unexpected event type",
			zap.String("event_type", event.EventType()))
		return nil
	}

	alerts, err := h.LowStock(ctx, foodIDs)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		return nil
	}

	for _, a := range alerts {
		h.logger.Warn("Basket food running low",
			zap.Int64("food_id", a.FoodID),
			zap.String("name", a.Name),
			zap.String("available", a.Available),
			zap.Int64("baskets_remaining", a.BasketsRemaining),
			zap.Int("threshold", a.Threshold))
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyLowStock(ctx, alerts); err != nil {
			return fmt.Errorf("notify low stock: %w", err)
		}
	}
	return nil
}

// LowStock returns alerts for the given basket foods whose stock supplies
// fewer baskets than the threshold. An empty foodIDs checks every basket food.
func (h *StockDepletionHandler) LowStock(ctx context.Context, foodIDs []int64) ([]LowStockAlert, error) {
	foods, err := h.foodRepo.FindBasketFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load basket foods: %w", err)
	}

	if len(foodIDs) > 0 {
		wanted := make(map[int64]bool, len(foodIDs))
		for _, id := range foodIDs {
			wanted[id] = true
		}
		filtered := foods[:0]
		for _, f := range foods {
			if wanted[f.ID] {
				filtered = append(filtered, f)
			}
		}
		foods = filtered
	}
	if len(foods) == 0 {
		return nil, nil
	}

	reqs, err := catalog.CalculateRequirements(foods, 1)
	if err != nil {
		return nil, err
	}
	lots, err := h.lotRepo.FindAvailableByFoods(ctx, catalog.FoodIDs(reqs))
	if err != nil {
		return nil, fmt.Errorf("load available lots: %w", err)
	}

	report := basket.CheckAvailability(1, reqs, inventory.NewStockSnapshot(lots))

	var alerts []LowStockAlert
	for _, line := range report.Lines {
		remaining := line.Baskets()
		if remaining >= int64(h.threshold) {
			continue
		}
		alerts = append(alerts, LowStockAlert{
			FoodID:           line.FoodID,
			Name:             line.Name,
			Available:        line.Available.String(),
			PerBasket:        line.PerBasket.String(),
			BasketsRemaining: remaining,
			Threshold:        h.threshold,
		})
	}
	return alerts, nil
}

// Ensure StockDepletionHandler implements shared.EventHandler
var _ shared.EventHandler = (*StockDepletionHandler)(nil)
