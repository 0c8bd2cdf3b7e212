package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
)

type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	received   []shared.DomainEvent
	err        error
	panics     bool
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.received = append(h.received, evt)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func testEvent(eventType string) shared.DomainEvent {
	return shared.NewBaseDomainEvent(eventType, "Test", uuid.New())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestEventBusDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(context.Background()))
	defer func() { _ = bus.Stop(context.Background()) }()

	handler := &recordingHandler{eventTypes: []string{"order.placed"}}
	require.NoError(t, bus.Subscribe(handler))

	require.NoError(t, bus.Publish(context.Background(), testEvent("order.placed")))
	waitFor(t, func() bool { return handler.count() == 1 })

	// unrelated event type is not delivered
	require.NoError(t, bus.Publish(context.Background(), testEvent("order.cancelled")))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, handler.count())
}

func TestEventBusWildcard(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(context.Background()))
	defer func() { _ = bus.Stop(context.Background()) }()

	handler := &recordingHandler{eventTypes: []string{WildcardEventType}}
	require.NoError(t, bus.Subscribe(handler))

	require.NoError(t, bus.Publish(context.Background(), testEvent("a"), testEvent("b")))
	waitFor(t, func() bool { return handler.count() == 2 })
}

func TestEventBusPublishDoesNotPropagateHandlerErrors(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(context.Background()))
	defer func() { _ = bus.Stop(context.Background()) }()

	failing := &recordingHandler{eventTypes: []string{"order.placed"}, err: errors.New("smtp down")}
	require.NoError(t, bus.Subscribe(failing))

	assert.NoError(t, bus.Publish(context.Background(), testEvent("order.placed")))
	waitFor(t, func() bool { return failing.count() == 1 })
}

func TestEventBusRecoversFromPanics(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(context.Background()))

	panicking := &recordingHandler{eventTypes: []string{"boom"}, panics: true}
	require.NoError(t, bus.Subscribe(panicking))

	assert.NoError(t, bus.Publish(context.Background(), testEvent("boom")))
	assert.NoError(t, bus.Stop(context.Background()))
}

func TestEventBusDropsEventsWhenStopped(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{eventTypes: []string{"order.placed"}}
	require.NoError(t, bus.Subscribe(handler))

	// not started yet
	require.NoError(t, bus.Publish(context.Background(), testEvent("order.placed")))
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, handler.count())
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(context.Background()))
	defer func() { _ = bus.Stop(context.Background()) }()

	handler := &recordingHandler{eventTypes: []string{"order.placed"}}
	require.NoError(t, bus.Subscribe(handler))
	require.NoError(t, bus.Unsubscribe(handler))

	require.NoError(t, bus.Publish(context.Background(), testEvent("order.placed")))
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, handler.count())
}
