package order

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeOrder identifies the order aggregate in events
const AggregateTypeOrder = "Order"

// Event types raised by the order aggregate
const (
	EventTypeOrderPlaced        = "order.placed"
	EventTypeOrderCancelled     = "order.cancelled"
	EventTypeOrderStatusChanged = "order.status_changed"
)

// OrderPlacedEvent is raised when a new order is placed
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     string    `json:"order_id"`
	CartName    string    `json:"cart_name"`
	UserID      uuid.UUID `json:"user_id"`
	TotalAmount string    `json:"total_amount"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(aggregateID uuid.UUID, orderID, cartName string, userID uuid.UUID, total string) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, aggregateID),
		OrderID:         orderID,
		CartName:        cartName,
		UserID:          userID,
		TotalAmount:     total,
	}
}

// OrderCancelledEvent is raised when an order transitions to cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     string    `json:"order_id"`
	CartName    string    `json:"cart_name"`
	UserID      uuid.UUID `json:"user_id"`
	CancelledBy string    `json:"cancelled_by"`
}

// NewOrderCancelledEvent creates an OrderCancelledEvent
func NewOrderCancelledEvent(aggregateID uuid.UUID, orderID, cartName string, userID uuid.UUID, cancelledBy string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, aggregateID),
		OrderID:         orderID,
		CartName:        cartName,
		UserID:          userID,
		CancelledBy:     cancelledBy,
	}
}

// OrderStatusChangedEvent is raised on any non-cancellation status change
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(aggregateID uuid.UUID, orderID, from, to string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, aggregateID),
		OrderID:         orderID,
		FromStatus:      from,
		ToStatus:        to,
	}
}
