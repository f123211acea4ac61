package shared

import "context"

// EventHandler reacts to domain events after the change that raised them
// has been committed
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the events the handler wants; nil means all of them
	EventTypes() []string
}

// EventPublisher is what application services hold to announce committed
// changes. A publish failure never undoes the change.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers and owns their
// lifetime: Stop returns once in-flight deliveries are done or ctx ends.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
