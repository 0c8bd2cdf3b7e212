package event

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

// InMemoryEventBus dispatches domain events to registered handlers on
// background goroutines. Publication is fire-and-forget: handler errors
// are logged, never returned to the publisher, and publishers never
// wait for handlers to finish.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewInMemoryEventBus creates an event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("eventbus"),
	}
}

// Start marks the bus as accepting events
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started")
	return nil
}

// Stop waits for in-flight handlers and stops accepting events
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

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
		b.logger.Warn("Event bus stop timed out with handlers in flight")
		return ctx.Err()
	}
}

// Subscribe implements shared.EventSubscriber
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler) error {
	b.registry.Register(handler)
	b.logger.Debug("Event handler registered",
		zap.Strings("event_types", handler.EventTypes()))
	return nil
}

// Unsubscribe implements shared.EventSubscriber
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) error {
	b.registry.Unregister(handler)
	return nil
}

// Publish implements shared.EventPublisher. Events published before
// Start or after Stop are dropped with a warning.
func (b *InMemoryEventBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		if !b.running.Load() {
			b.logger.Warn("Event dropped, bus not running",
				zap.String("event_type", evt.EventType()))
			continue
		}

		handlers := b.registry.GetHandlers(evt.EventType())
		if len(handlers) == 0 {
			b.logger.Debug("No handlers for event",
				zap.String("event_type", evt.EventType()))
			continue
		}

		for _, handler := range handlers {
			b.wg.Add(1)
			go b.dispatchToHandler(handler, evt)
		}
	}
	return nil
}

// dispatchToHandler runs a single handler, recovering panics. Handlers
// receive a fresh context so they outlive the originating request.
func (b *InMemoryEventBus) dispatchToHandler(handler shared.EventHandler, evt shared.DomainEvent) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.String("event_id", evt.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := handler.Handle(context.Background(), evt); err != nil {
		b.logger.Error("Event handler failed",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
			zap.String("aggregate_id", evt.AggregateID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
