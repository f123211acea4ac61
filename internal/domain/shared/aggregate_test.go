package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAggregateRoot_QueuesEventsUntilCleared(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.True(t, root.IsNew())
	assert.Empty(t, root.GetDomainEvents())

	first := NewBaseDomainEvent("basket.batch_assembled", "BasketBatch", 1)
	second := NewBaseDomainEvent("inventory.lot_discarded", "Lot", 2)
	root.AddDomainEvent(&first)
	root.AddDomainEvent(&second)

	events := root.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "basket.batch_assembled", events[0].EventType())
	assert.Equal(t, "inventory.lot_discarded", events[1].EventType())

	// the returned slice is a snapshot
	events[0] = nil
	assert.NotNil(t, root.GetDomainEvents()[0])

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}
