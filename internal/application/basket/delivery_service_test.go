package basket

import (
	"context"
	"testing"
	"time"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestDeliveryService(t *testing.T, s *memoryStore) *DeliveryService {
	return NewDeliveryService(memoryFoodRepo{s}, memoryDeliveryRepo{s}, memoryTxScope{s}, zaptest.NewLogger(t))
}

func TestDeliveryService_RegisterDelivery(t *testing.T) {
	s := riceAndBeansStore()
	svc := newTestDeliveryService(t, s)
	publisher := &recordingPublisher{}
	svc.SetEventPublisher(publisher)

	deliveredAt := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	resp, err := svc.RegisterDelivery(context.Background(), RegisterDeliveryCommand{
		RecipientName: "  Maria Souza ",
		DeliveredAt:   deliveredAt,
		Notes:         "picked up at the door",
		CreatedBy:     "volunteer@foodbank.org",
		Items: []DeliveryLineInput{
			{FoodID: 1, Quantity: decimal.NewFromInt(2)},
			{FoodID: 2, Quantity: decimal.Zero},
			{FoodID: 0, Quantity: decimal.NewFromInt(1)},
			{FoodID: 2, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Maria Souza", resp.RecipientName)
	assert.True(t, resp.DeliveredAt.Equal(deliveredAt))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Rice", resp.Items[0].FoodName)
	assert.Equal(t, "Beans", resp.Items[1].FoodName)

	// deliveries never touch stock
	assert.True(t, s.lot(10).Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, s.lot(11).Quantity.Equal(decimal.NewFromInt(1)))

	require.Len(t, publisher.events, 1)
	registered, ok := publisher.events[0].(*basket.DeliveryRegisteredEvent)
	require.True(t, ok)
	assert.Equal(t, resp.ID, registered.DeliveryID)
	assert.Equal(t, 2, registered.ItemCount)

	stored, err := svc.GetDelivery(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "picked up at the door", *stored.Notes)
}

func TestDeliveryService_RegisterDelivery_Validation(t *testing.T) {
	s := riceAndBeansStore()
	svc := newTestDeliveryService(t, s)
	now := time.Now()

	tests := []struct {
		name string
		cmd  RegisterDeliveryCommand
	}{
		{
			name: "missing recipient",
			cmd:  RegisterDeliveryCommand{DeliveredAt: now, Items: []DeliveryLineInput{{FoodID: 1, Quantity: decimal.NewFromInt(1)}}},
		},
		{
			name: "missing delivery date",
			cmd:  RegisterDeliveryCommand{RecipientName: "Ana", Items: []DeliveryLineInput{{FoodID: 1, Quantity: decimal.NewFromInt(1)}}},
		},
		{
			name: "no valid items",
			cmd:  RegisterDeliveryCommand{RecipientName: "Ana", DeliveredAt: now, Items: []DeliveryLineInput{{FoodID: 1, Quantity: decimal.Zero}}},
		},
		{
			name: "unknown food",
			cmd:  RegisterDeliveryCommand{RecipientName: "Ana", DeliveredAt: now, Items: []DeliveryLineInput{{FoodID: 77, Quantity: decimal.NewFromInt(1)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterDelivery(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
	assert.Empty(t, s.deliveries)
	assert.Equal(t, 0, s.txCount)
}

func TestDeliveryService_GetDelivery_NotFound(t *testing.T) {
	svc := newTestDeliveryService(t, newMemoryStore())

	_, err := svc.GetDelivery(context.Background(), 5)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
