package catalog

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Category groups products for browsing
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:varchar(500)" json:"image_url"`
}

// TableName returns the database table name
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category
func NewCategory(name, description, imageURL string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "category name must be between 1 and 100 characters")
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		ImageURL:          imageURL,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("VALIDATION_ERROR", "category name must be between 1 and 100 characters")
	}
	c.Name = name
	c.Touch()
	c.IncrementVersion()
	return nil
}

// SetDescription updates the category description
func (c *Category) SetDescription(description string) {
	c.Description = description
	c.Touch()
	c.IncrementVersion()
}

// SetImageURL updates the category image
func (c *Category) SetImageURL(url string) {
	c.ImageURL = url
	c.Touch()
	c.IncrementVersion()
}
