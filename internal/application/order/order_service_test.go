package order

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) SumTotalAmount(ctx context.Context) (valueobject.Money, error) {
	args := m.Called(ctx)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteByOrderID(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByName(ctx context.Context, cartName string) (*cart.Cart, error) {
	args := m.Called(ctx, cartName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*cart.Cart, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]*catalog.Product, error) {
	args := m.Called(ctx, categoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) IncrementSales(ctx context.Context, productID uuid.UUID, delta int) error {
	args := m.Called(ctx, productID, delta)
	return args.Error(0)
}

func (m *MockProductRepository) FindTopSelling(ctx context.Context, limit int) ([]*catalog.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

var (
	testOwnerID = uuid.New()
	testActor   = Actor{UserID: testOwnerID, Username: "alice", Role: identity.RoleCustomer}
	adminActor  = Actor{UserID: uuid.New(), Username: "root", Role: identity.RoleAdmin}
)

func usd(amount float64) valueobject.Money {
	return valueobject.NewMoneyFromFloat(amount, valueobject.USD)
}

func createTestProduct(t *testing.T, name string, price float64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", usd(price), uuid.New(), testOwnerID)
	require.NoError(t, err)
	return p
}

func createTestCart(t *testing.T, items map[uuid.UUID]int) *cart.Cart {
	t.Helper()
	c, err := cart.NewCart("alice_cart", testOwnerID)
	require.NoError(t, err)
	for productID, qty := range items {
		require.NoError(t, c.AddItem(productID, qty))
	}
	return c
}

func createTestOrder(t *testing.T, total float64) *order.Order {
	t.Helper()
	o, err := order.NewOrder("alice_cart", testOwnerID, usd(total))
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func newService(orders *MockOrderRepository, carts *MockCartRepository, products *MockProductRepository) (*OrderService, *capturingPublisher) {
	svc := NewOrderService(orders, carts, products, nil)
	pub := &capturingPublisher{}
	svc.SetEventPublisher(pub)
	return svc, pub
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots total from quantity times price", func(t *testing.T) {
		orders := new(MockOrderRepository)
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		svc, pub := newService(orders, carts, products)

		widget := createTestProduct(t, "Widget", 19.99)
		c := createTestCart(t, map[uuid.UUID]int{widget.ID: 3})

		carts.On("FindByName", ctx, "alice_cart").Return(c, nil)
		products.On("FindByID", ctx, widget.ID).Return(widget, nil)
		orders.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		products.On("IncrementSales", ctx, widget.ID, 3).Return(nil)

		resp, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CartName: "alice_cart"})
		require.NoError(t, err)

		assert.InDelta(t, 59.97, resp.TotalAmount, 0.001)
		assert.Equal(t, "pending", resp.Status)
		assert.NotEmpty(t, resp.OrderID)
		assert.Contains(t, pub.eventTypes(), order.EventTypeOrderPlaced)
		orders.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("missing cart yields not found and no order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		svc, _ := newService(orders, carts, products)

		carts.On("FindByName", ctx, "ghost_cart").Return(nil, shared.ErrNotFound)

		_, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CartName: "ghost_cart"})
		assert.True(t, shared.IsNotFound(err))
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unresolvable product yields validation error naming it", func(t *testing.T) {
		orders := new(MockOrderRepository)
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		svc, _ := newService(orders, carts, products)

		missingID := uuid.New()
		c := createTestCart(t, map[uuid.UUID]int{missingID: 1})

		carts.On("FindByName", ctx, "alice_cart").Return(c, nil)
		products.On("FindByID", ctx, missingID).Return(nil, shared.ErrNotFound)

		_, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CartName: "alice_cart"})
		require.Error(t, err)

		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "VALIDATION_ERROR", derr.Code)
		assert.Contains(t, derr.Message, missingID.String())
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("order survives failed sales increment", func(t *testing.T) {
		orders := new(MockOrderRepository)
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		svc, _ := newService(orders, carts, products)

		widget := createTestProduct(t, "Widget", 10)
		c := createTestCart(t, map[uuid.UUID]int{widget.ID: 1})

		carts.On("FindByName", ctx, "alice_cart").Return(c, nil)
		products.On("FindByID", ctx, widget.ID).Return(widget, nil)
		orders.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		products.On("IncrementSales", ctx, widget.ID, 1).Return(shared.ErrNotFound)

		resp, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CartName: "alice_cart"})
		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("empty cart yields a zero total order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		svc, _ := newService(orders, carts, products)

		c := createTestCart(t, nil)
		carts.On("FindByName", ctx, "alice_cart").Return(c, nil)
		orders.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CartName: "alice_cart"})
		require.NoError(t, err)
		assert.Zero(t, resp.TotalAmount)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects status outside the enum", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

		o := createTestOrder(t, 10)
		orders.On("FindByOrderID", ctx, o.OrderID).Return(o, nil)

		_, err := svc.UpdateOrderStatus(ctx, o.OrderID, "refunded", adminActor)
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "VALIDATION_ERROR", derr.Code)
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("shipped order can be cancelled", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, pub := newService(orders, new(MockCartRepository), new(MockProductRepository))

		o := createTestOrder(t, 10)
		require.NoError(t, o.SetStatus(order.StatusShipped, "root"))
		o.ClearDomainEvents()

		orders.On("FindByOrderID", ctx, o.OrderID).Return(o, nil)
		orders.On("Save", ctx, o).Return(nil)

		resp, err := svc.UpdateOrderStatus(ctx, o.OrderID, "cancelled", adminActor)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "root", resp.CancelledBy)
		assert.Contains(t, pub.eventTypes(), order.EventTypeOrderCancelled)
	})

	t.Run("missing order yields not found", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

		orders.On("FindByOrderID", ctx, "nope").Return(nil, shared.ErrNotFound)
		_, err := svc.UpdateOrderStatus(ctx, "nope", "shipped", adminActor)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels by cart name convention", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, pub := newService(orders, new(MockCartRepository), new(MockProductRepository))

		o := createTestOrder(t, 10)
		o.UserID = uuid.New() // id does not match, name convention does

		orders.On("FindByOrderID", ctx, o.OrderID).Return(o, nil)
		orders.On("Save", ctx, o).Return(nil)

		resp, err := svc.CancelOrder(ctx, o.OrderID, testActor)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "alice", resp.CancelledBy)
		assert.Contains(t, pub.eventTypes(), order.EventTypeOrderCancelled)
	})

	t.Run("owner cancels by user id", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

		o := createTestOrder(t, 10)
		o.CartName = "shared_household_cart"

		orders.On("FindByOrderID", ctx, o.OrderID).Return(o, nil)
		orders.On("Save", ctx, o).Return(nil)

		_, err := svc.CancelOrder(ctx, o.OrderID, testActor)
		assert.NoError(t, err)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

		o := createTestOrder(t, 10)
		stranger := Actor{UserID: uuid.New(), Username: "mallory", Role: identity.RoleCustomer}

		orders.On("FindByOrderID", ctx, o.OrderID).Return(o, nil)

		_, err := svc.CancelOrder(ctx, o.OrderID, stranger)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "FORBIDDEN", derr.Code)
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

		o := createTestOrder(t, 10)
		orders.On("FindByOrderID", ctx, o.OrderID).Return(o, nil)
		orders.On("Save", ctx, o).Return(nil)

		resp, err := svc.CancelOrder(ctx, o.OrderID, adminActor)
		require.NoError(t, err)
		assert.Equal(t, "root", resp.CancelledBy)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

	orders.On("DeleteByOrderID", ctx, "ord-1").Return(nil).Once()
	orders.On("DeleteByOrderID", ctx, "ord-1").Return(shared.ErrNotFound).Once()

	assert.NoError(t, svc.DeleteOrder(ctx, "ord-1"))
	assert.True(t, shared.IsNotFound(svc.DeleteOrder(ctx, "ord-1")))
}

func TestUpdateOrder(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

	o := createTestOrder(t, 10)
	orders.On("FindByOrderID", ctx, o.OrderID).Return(o, nil)
	orders.On("Save", ctx, o).Return(nil)

	status := "processing"
	resp, err := svc.UpdateOrder(ctx, o.OrderID, UpdateOrderRequest{Status: &status}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Status)
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	svc, _ := newService(orders, new(MockCartRepository), new(MockProductRepository))

	stored := []*order.Order{createTestOrder(t, 10), createTestOrder(t, 20)}
	orders.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return(stored, nil)
	orders.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

	page, err := svc.ListOrders(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
}
