package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormCartRepository is the gorm implementation of cart.CartRepository
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a cart repository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID implements cart.CartRepository
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByName implements cart.CartRepository
func (r *GormCartRepository) FindByName(ctx context.Context, cartName string) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&c, "cart_name = ?", cartName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAll implements cart.CartRepository
func (r *GormCartRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*cart.Cart, error) {
	var carts []*cart.Cart
	query := r.db.WithContext(ctx).Preload("Items")
	if filter.Search != "" {
		query = query.Where("cart_name LIKE ?", "%"+filter.Search+"%")
	}
	query = applyPagination(query, filter, "created_at DESC")
	if err := query.Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

// Save implements cart.CartRepository. Items are reconciled against the
// stored rows inside a transaction: removed line items are deleted,
// current ones are upserted.
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(c).Error; err != nil {
			return err
		}

		if len(c.Items) == 0 {
			return tx.Delete(&cart.CartItem{}, "cart_id = ?", c.ID).Error
		}

		keep := make([]uuid.UUID, 0, len(c.Items))
		for i := range c.Items {
			keep = append(keep, c.Items[i].ID)
		}
		if err := tx.Delete(&cart.CartItem{}, "cart_id = ? AND id NOT IN ?", c.ID, keep).Error; err != nil {
			return err
		}

		for i := range c.Items {
			c.Items[i].CartID = c.ID
			if err := tx.Save(&c.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete implements cart.CartRepository
func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&cart.CartItem{}, "cart_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&cart.Cart{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count implements cart.CartRepository
func (r *GormCartRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&cart.Cart{})
	if filter.Search != "" {
		query = query.Where("cart_name LIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ cart.CartRepository = (*GormCartRepository)(nil)
