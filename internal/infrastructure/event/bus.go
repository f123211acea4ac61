package event

import (
	"context"
	"errors"
	"sync"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrBusStopped is returned when publishing to a stopped asynchronous bus
var ErrBusStopped = errors.New("event bus is stopped")

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch makes Publish return immediately and run handlers in
// background goroutines. Stop waits for them to finish.
func WithAsyncDispatch() BusOption {
	return func(b *InMemoryEventBus) {
		b.async = true
	}
}

// InMemoryEventBus delivers domain events to handlers in the same process
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler

	logger *zap.Logger
	async  bool

	// lifecycle guards stopped and every wg.Add so Stop never races a publish
	lifecycle sync.Mutex
	stopped   bool
	wg        sync.WaitGroup
}

type delivery struct {
	handler shared.EventHandler
	event   shared.DomainEvent
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands each event to every handler subscribed to its type.
// Handler failures are logged and never reach the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var deliveries []delivery
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			deliveries = append(deliveries, delivery{handler: handler, event: event})
		}
	}

	if !b.async {
		for _, d := range deliveries {
			b.dispatch(ctx, d.handler, d.event)
		}
		return nil
	}

	b.lifecycle.Lock()
	if b.stopped {
		b.lifecycle.Unlock()
		return ErrBusStopped
	}
	b.wg.Add(len(deliveries))
	b.lifecycle.Unlock()

	detached := context.WithoutCancel(ctx)
	for _, d := range deliveries {
		go func(d delivery) {
			defer b.wg.Done()
			b.dispatch(detached, d.handler, d.event)
		}(d)
	}
	return nil
}

// Subscribe registers a handler. Without explicit event types the handler's
// own EventTypes are used; if those are empty too it receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.mu.Unlock()

	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.wildcard = without(b.wildcard, handler)
	for eventType, handlers := range b.handlers {
		remaining := without(handlers, handler)
		if len(remaining) == 0 {
			delete(b.handlers, eventType)
			continue
		}
		b.handlers[eventType] = remaining
	}
}

// Start marks the bus as accepting events
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.lifecycle.Lock()
	b.stopped = false
	b.lifecycle.Unlock()
	b.logger.Info("Event bus started", zap.Bool("async", b.async))
	return nil
}

// Stop rejects further asynchronous publishes and waits for in-flight
// handlers until ctx is done
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.lifecycle.Lock()
	b.stopped = true
	b.lifecycle.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus stopped before handlers finished")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(b.wildcard))
	result = append(result, typed...)
	return append(result, b.wildcard...)
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	log := logger.Enrich(ctx, b.logger).With(
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.Int64("aggregate_id", event.AggregateID()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Event handler panicked", zap.Any("panic", r))
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		log.Error("Event handler failed", zap.Error(err))
	}
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
