package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderRepository persists order aggregates. Orders are addressed by
// their opaque order ID, not the surrogate primary key.
type OrderRepository interface {
	shared.Repository[Order]
	FindByOrderID(ctx context.Context, orderID string) (*Order, error)
	DeleteByOrderID(ctx context.Context, orderID string) error
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*Order, error)
	FindRecent(ctx context.Context, limit int) ([]*Order, error)
	SumTotalAmount(ctx context.Context) (valueobject.Money, error)
}
