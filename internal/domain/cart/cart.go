package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// CartItem is a line item referencing a catalog product by ID.
// Quantities are merged when the same product is added twice.
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `gorm:"not null" json:"added_at"`
}

// TableName returns the database table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Cart is the shopping cart aggregate root
type Cart struct {
	shared.BaseAggregateRoot
	CartName string     `gorm:"type:varchar(120);uniqueIndex;not null" json:"cart_name"`
	OwnerID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Items    []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

// TableName returns the database table name
func (Cart) TableName() string {
	return "carts"
}

// CartNameFor returns the conventional cart name for a username
func CartNameFor(username string) string {
	return username + "_cart"
}

// NewCart creates an empty cart
func NewCart(cartName string, ownerID uuid.UUID) (*Cart, error) {
	cartName = strings.TrimSpace(cartName)
	if cartName == "" || len(cartName) > 120 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "cart name must be between 1 and 120 characters")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "cart owner is required")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CartName:          cartName,
		OwnerID:           ownerID,
		Items:             []CartItem{},
	}, nil
}

// AddItem adds a product to the cart. Adding a product already in the
// cart merges the quantities.
func (c *Cart) AddItem(productID uuid.UUID, quantity int) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "product is required")
	}
	if quantity < 1 {
		return shared.NewDomainError("VALIDATION_ERROR", "quantity must be at least 1")
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Items[i].Touch()
			c.Touch()
			c.IncrementVersion()
			return nil
		}
	}

	c.Items = append(c.Items, CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		Quantity:   quantity,
		AddedAt:    time.Now(),
	})
	c.Touch()
	c.IncrementVersion()
	return nil
}

// RemoveItem removes a product's line item from the cart
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Touch()
			c.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "product not in cart")
}

// Clear removes all items
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Touch()
	c.IncrementVersion()
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemQuantity returns the quantity for a product, 0 if absent
func (c *Cart) ItemQuantity(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return c.Items[i].Quantity
		}
	}
	return 0
}

// BelongsTo reports whether the cart belongs to the given user, either
// by owner ID or by the <username>_cart naming convention.
func (c *Cart) BelongsTo(userID uuid.UUID, username string) bool {
	if c.OwnerID == userID {
		return true
	}
	return c.CartName == CartNameFor(username)
}
