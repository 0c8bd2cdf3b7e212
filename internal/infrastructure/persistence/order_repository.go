package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// GormOrderRepository is the gorm implementation of order.OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates an order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID implements order.OrderRepository
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByOrderID implements order.OrderRepository
func (r *GormOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).First(&o, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindAll implements order.OrderRepository. Orders sort by placement
// time, newest first, unless the filter says otherwise.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*order.Order, error) {
	var orders []*order.Order
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx), filter)
	query = applyPagination(query, filter, "time_placed DESC")
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByUser implements order.OrderRepository
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*order.Order, error) {
	var orders []*order.Order
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	query = applyPagination(query, filter, "time_placed DESC")
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindRecent implements order.OrderRepository
func (r *GormOrderRepository) FindRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []*order.Order
	err := r.db.WithContext(ctx).
		Order("time_placed DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SumTotalAmount implements order.OrderRepository
func (r *GormOrderRepository) SumTotalAmount(ctx context.Context) (valueobject.Money, error) {
	var total *string
	err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("status <> ?", order.StatusCancelled).
		Select("SUM(total_amount)").
		Scan(&total).Error
	if err != nil {
		return valueobject.Money{}, err
	}
	if total == nil {
		return valueobject.ZeroMoney(valueobject.DefaultCurrency), nil
	}
	amount, err := decimal.NewFromString(*total)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoney(amount, valueobject.DefaultCurrency), nil
}

// Save implements order.OrderRepository
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// Delete implements order.OrderRepository
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&order.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByOrderID implements order.OrderRepository
func (r *GormOrderRepository) DeleteByOrderID(ctx context.Context, orderID string) error {
	result := r.db.WithContext(ctx).Delete(&order.Order{}, "order_id = ?", orderID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count implements order.OrderRepository
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_id LIKE ? OR cart_name LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		}
	}
	return query
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
