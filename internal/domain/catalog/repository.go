package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository persists product aggregates
type ProductRepository interface {
	shared.Repository[Product]
	FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]*Product, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Product, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	// IncrementSales atomically adds delta to the product's sales counter.
	IncrementSales(ctx context.Context, productID uuid.UUID, delta int) error
	FindTopSelling(ctx context.Context, limit int) ([]*Product, error)
}

// CategoryRepository persists category aggregates
type CategoryRepository interface {
	shared.Repository[Category]
	FindByName(ctx context.Context, name string) (*Category, error)
}
