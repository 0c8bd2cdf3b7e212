package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status is the fulfillment state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid reports whether the status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a placed order. The total is a snapshot taken at placement
// time; later price changes do not affect it.
type Order struct {
	shared.BaseAggregateRoot
	OrderID     string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"`
	CartName    string            `gorm:"type:varchar(120);not null;index" json:"cart_name"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount valueobject.Money `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status      Status            `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CancelledBy string            `gorm:"type:varchar(100)" json:"cancelled_by,omitempty"`
	TimePlaced  time.Time         `gorm:"not null;index" json:"time_placed"`
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order with a fresh opaque order ID
func NewOrder(cartName string, userID uuid.UUID, total valueobject.Money) (*Order, error) {
	if cartName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "cart name is required")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "order total cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           uuid.NewString(),
		CartName:          cartName,
		UserID:            userID,
		TotalAmount:       total,
		Status:            StatusPending,
		TimePlaced:        time.Now(),
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o.ID, o.OrderID, o.CartName, o.UserID, o.TotalAmount.StringFixed(2)))
	return o, nil
}

// SetStatus overwrites the current status. Any valid status may follow
// any other; there is no transition graph. Moving to cancelled records
// the actor and raises a cancellation event.
func (o *Order) SetStatus(status Status, actor string) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("VALIDATION_ERROR", "invalid order status: %s", status)
	}

	previous := o.Status
	o.Status = status
	o.Touch()
	o.IncrementVersion()

	if status == StatusCancelled {
		o.CancelledBy = actor
		o.AddDomainEvent(NewOrderCancelledEvent(o.ID, o.OrderID, o.CartName, o.UserID, actor))
	} else if previous != status {
		o.AddDomainEvent(NewOrderStatusChangedEvent(o.ID, o.OrderID, string(previous), string(status)))
	}
	return nil
}

// Cancel marks the order cancelled by the given actor
func (o *Order) Cancel(actor string) error {
	return o.SetStatus(StatusCancelled, actor)
}

// IsCancelled reports whether the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}
