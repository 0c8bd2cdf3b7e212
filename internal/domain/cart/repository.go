package cart

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// CartRepository persists cart aggregates
type CartRepository interface {
	shared.Repository[Cart]
	FindByName(ctx context.Context, cartName string) (*Cart, error)
}
