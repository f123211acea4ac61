package basket

import (
	"context"
	"fmt"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DeliveryService registers basket deliveries to recipients.
// Deliveries are a record of handover only; stock was already consumed when
// the baskets were assembled.
type DeliveryService struct {
	foodRepo       catalog.FoodRepository
	deliveryRepo   basket.DeliveryRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	foodRepo catalog.FoodRepository,
	deliveryRepo basket.DeliveryRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{
		foodRepo:     foodRepo,
		deliveryRepo: deliveryRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DeliveryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterDelivery records a delivery header and its items in one transaction
func (s *DeliveryService) RegisterDelivery(ctx context.Context, cmd RegisterDeliveryCommand) (*DeliveryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "basket_delivery", "register")
	defer span.End()

	lines := make([]basket.DeliveryLine, len(cmd.Items))
	for i, item := range cmd.Items {
		lines[i] = basket.DeliveryLine{FoodID: item.FoodID, Quantity: item.Quantity}
	}

	delivery, err := basket.NewBasketDelivery(cmd.RecipientName, cmd.DeliveredAt, cmd.Notes, cmd.CreatedBy, lines)
	if err != nil {
		return nil, err
	}

	if err := s.resolveFoodNames(ctx, delivery); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Deliveries().InsertDelivery(ctx, delivery); err != nil {
			return fmt.Errorf("insert delivery: %w", err)
		}
		delivery.Recorded(delivery.ID)
		if err := repos.Deliveries().InsertItems(ctx, delivery.Items); err != nil {
			return fmt.Errorf("insert delivery items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Basket delivery registered",
		zap.Int64("delivery_id", delivery.ID),
		zap.Int("items", len(delivery.Items)))

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, delivery.GetDomainEvents()...); err != nil {
			s.logger.Error("Failed to publish delivery events",
				zap.Int64("delivery_id", delivery.ID), zap.Error(err))
		}
	}
	delivery.ClearDomainEvents()

	resp := ToDeliveryResponse(delivery)
	return &resp, nil
}

// GetDelivery returns a delivery with its items
func (s *DeliveryService) GetDelivery(ctx context.Context, id int64) (*DeliveryResponse, error) {
	delivery, err := s.deliveryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDeliveryResponse(delivery)
	return &resp, nil
}

func (s *DeliveryService) resolveFoodNames(ctx context.Context, delivery *basket.BasketDelivery) error {
	ids := make([]int64, len(delivery.Items))
	for i, item := range delivery.Items {
		ids[i] = item.FoodID
	}

	foods, err := s.foodRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load delivered foods: %w", err)
	}
	names := make(map[int64]string, len(foods))
	for _, f := range foods {
		names[f.ID] = f.Name
	}

	for i := range delivery.Items {
		name, ok := names[delivery.Items[i].FoodID]
		if !ok {
			return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Food %d does not exist", delivery.Items[i].FoodID))
		}
		delivery.Items[i].FoodName = name
	}
	return nil
}
