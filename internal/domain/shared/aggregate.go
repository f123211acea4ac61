package shared

// BaseAggregateRoot is embedded by entities that raise domain events.
// Events queue up on the aggregate and are handed to an EventPublisher
// by the application service once the transaction that produced them
// has committed.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
}

// NewBaseAggregateRoot returns an unpersisted aggregate with no pending events
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// AddDomainEvent queues an event for publication
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events in the order they were raised
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return append([]DomainEvent(nil), a.pending...)
}

// ClearDomainEvents drops queued events once they have been published
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
