package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ImageList is an ordered list of image URLs stored as a JSON column
type ImageList []string

// Value implements driver.Valuer
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into ImageList", value)
	}
}

// Product is the catalog aggregate root
type Product struct {
	shared.BaseAggregateRoot
	Name        string            `gorm:"type:varchar(200);not null;index" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	Price       valueobject.Money `gorm:"type:decimal(12,2);not null" json:"price"`
	OldPrice    *valueobject.Money `gorm:"type:decimal(12,2)" json:"old_price,omitempty"`
	Images      ImageList         `gorm:"type:jsonb" json:"images"`
	CategoryID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"category_id"`
	OwnerID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"owner_id"`
	VendorID    *uuid.UUID        `gorm:"type:uuid;index" json:"vendor_id,omitempty"`
	Stock       int               `gorm:"not null;default:0" json:"stock"`
	Sales       int               `gorm:"not null;default:0" json:"sales"`
	InStock     bool              `gorm:"not null;default:true" json:"in_stock"`
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product owned by the given user
func NewProduct(name, description string, price valueobject.Money, categoryID, ownerID uuid.UUID) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "product name must be between 1 and 200 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "product price cannot be negative")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "category is required")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "owner is required")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Price:             price,
		Images:            ImageList{},
		CategoryID:        categoryID,
		OwnerID:           ownerID,
		InStock:           true,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product.ID, product.Name, ownerID))
	return product, nil
}

// SetName updates the product name
func (p *Product) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("VALIDATION_ERROR", "product name must be between 1 and 200 characters")
	}
	p.Name = name
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetPrice updates the price, keeping the previous one as OldPrice
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "product price cannot be negative")
	}
	previous := p.Price
	p.Price = price
	p.OldPrice = &previous
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetDescription updates the product description
func (p *Product) SetDescription(description string) {
	p.Description = description
	p.Touch()
	p.IncrementVersion()
}

// SetCategory moves the product to another category
func (p *Product) SetCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "category is required")
	}
	p.CategoryID = categoryID
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetImages replaces the image list
func (p *Product) SetImages(images []string) {
	p.Images = ImageList(images)
	p.Touch()
	p.IncrementVersion()
}

// AddImage appends an image URL
func (p *Product) AddImage(url string) {
	p.Images = append(p.Images, url)
	p.Touch()
	p.IncrementVersion()
}

// SetStock adjusts the stock level and syncs the InStock flag
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "stock cannot be negative")
	}
	p.Stock = stock
	p.InStock = stock > 0
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetInStock overrides the availability flag independently of the stock count
func (p *Product) SetInStock(inStock bool) {
	p.InStock = inStock
	p.Touch()
	p.IncrementVersion()
}

// OwnedBy reports whether the given user owns this product
func (p *Product) OwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
