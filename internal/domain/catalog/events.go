package catalog

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type identifiers for catalog events
const (
	AggregateTypeProduct  = "Product"
	AggregateTypeCategory = "Category"
)

// Event types raised by catalog aggregates
const (
	EventTypeProductCreated = "catalog.product.created"
	EventTypeProductDeleted = "catalog.product.deleted"
)

// ProductCreatedEvent is raised when a product is added to the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewProductCreatedEvent creates a ProductCreatedEvent
func NewProductCreatedEvent(productID uuid.UUID, name string, ownerID uuid.UUID) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, productID),
		Name:            name,
		OwnerID:         ownerID,
	}
}

// ProductDeletedEvent is raised when a product is removed from the catalog
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewProductDeletedEvent creates a ProductDeletedEvent
func NewProductDeletedEvent(productID uuid.UUID, name string) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, productID),
		Name:            name,
	}
}
