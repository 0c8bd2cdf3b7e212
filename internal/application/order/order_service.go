package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderService implements the order workflow
type OrderService struct {
	orders         order.OrderRepository
	carts          cart.CartRepository
	products       catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates an order service
func NewOrderService(
	orders order.OrderRepository,
	carts cart.CartRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		logger:   logger.Named("order-service"),
	}
}

// SetEventPublisher wires the event publisher for notifications
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Actor identifies the authenticated principal performing an operation
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     identity.Role
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == identity.RoleAdmin
}

// PlaceOrderRequest names the cart to convert into an order
type PlaceOrderRequest struct {
	CartName string `json:"cart_name" binding:"required"`
}

// UpdateOrderRequest carries a partial order update
type UpdateOrderRequest struct {
	Status   *string `json:"status,omitempty"`
	CartName *string `json:"cart_name,omitempty"`
}

// OrderResponse is the API shape of an order
type OrderResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	CartName    string    `json:"cart_name"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CancelledBy string    `json:"cancelled_by,omitempty"`
	TimePlaced  time.Time `json:"time_placed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ToOrderResponse maps an order aggregate to its API shape
func ToOrderResponse(o *order.Order) *OrderResponse {
	return &OrderResponse{
		ID:          o.ID.String(),
		OrderID:     o.OrderID,
		CartName:    o.CartName,
		UserID:      o.UserID.String(),
		TotalAmount: o.TotalAmount.Round(2).Float64(),
		Status:      string(o.Status),
		CancelledBy: o.CancelledBy,
		TimePlaced:  o.TimePlaced,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Version:     o.Version,
	}
}

// PlaceOrder converts a cart into a pending order. The total is the
// sum of quantity times current product price, snapshotted at placement
// time. Sales counters and notification mail are best-effort side
// effects; the order stands even when they fail.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	c, err := s.carts.FindByName(ctx, req.CartName)
	if err != nil {
		return nil, err
	}

	total := valueobject.ZeroMoney(valueobject.DefaultCurrency)
	for _, item := range c.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.NewDomainErrorf("VALIDATION_ERROR",
					"product %s in cart %s could not be resolved", item.ProductID, c.CartName)
			}
			return nil, err
		}
		line := product.Price.MultiplyByInt(int64(item.Quantity))
		total = total.MustAdd(line)
	}

	o, err := order.NewOrder(c.CartName, c.OwnerID, total)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range c.Items {
		if err := s.products.IncrementSales(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn("Failed to increment product sales",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
		}
	}

	s.publishEvents(ctx, o)

	s.logger.Info("Order placed",
		zap.String("order_id", o.OrderID),
		zap.String("cart_name", o.CartName),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)
	return ToOrderResponse(o), nil
}

// GetOrder fetches an order by its opaque order ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	o, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// ListOrders returns all orders, newest placements first
func (s *OrderService) ListOrders(ctx context.Context, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, ToOrderResponse(o))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListUserOrders returns the orders placed by one user
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*OrderResponse, error) {
	orders, err := s.orders.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, ToOrderResponse(o))
	}
	return items, nil
}

// UpdateOrderStatus overwrites an order's status. Any enum value may
// replace any other; unknown values are rejected.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string, actor Actor) (*OrderResponse, error) {
	o, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.SetStatus(order.Status(status), actor.Username); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)
	return ToOrderResponse(o), nil
}

// CancelOrder cancels an order on behalf of its owner. Ownership is
// established by user ID or by the <username>_cart naming convention;
// admins bypass the check.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string, actor Actor) (*OrderResponse, error) {
	o, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		ownsByID := o.UserID == actor.UserID
		ownsByName := o.CartName == cart.CartNameFor(actor.Username)
		if !ownsByID && !ownsByName {
			return nil, shared.NewDomainError("FORBIDDEN", "order belongs to another user")
		}
	}

	if err := o.Cancel(actor.Username); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	s.logger.Info("Order cancelled",
		zap.String("order_id", o.OrderID),
		zap.String("cancelled_by", actor.Username),
	)
	return ToOrderResponse(o), nil
}

// UpdateOrder applies a partial update to an order
func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest, actor Actor) (*OrderResponse, error) {
	o, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := o.SetStatus(order.Status(*req.Status), actor.Username); err != nil {
			return nil, err
		}
	}
	if req.CartName != nil && *req.CartName != "" {
		o.CartName = *req.CartName
		o.Touch()
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)
	return ToOrderResponse(o), nil
}

// DeleteOrder removes an order by its opaque order ID. Deleting the
// same ID twice yields NOT_FOUND on the second call.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	return s.orders.DeleteByOrderID(ctx, orderID)
}

func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		o.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, o.DomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", o.OrderID),
			zap.Error(err),
		)
	}
	o.ClearDomainEvents()
}
