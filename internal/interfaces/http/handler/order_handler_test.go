package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

type memCartRepo struct {
	cart.CartRepository
	byName map[string]*cart.Cart
}

func (r *memCartRepo) FindByName(_ context.Context, name string) (*cart.Cart, error) {
	if c, ok := r.byName[name]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.byName[c.CartName] = c
	return nil
}

type memProductRepo struct {
	catalog.ProductRepository
	byID map[uuid.UUID]*catalog.Product
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) IncrementSales(_ context.Context, id uuid.UUID, delta int) error {
	if p, ok := r.byID[id]; ok {
		p.Sales += delta
		return nil
	}
	return shared.ErrNotFound
}

type memOrderRepo struct {
	order.OrderRepository
	byOrderID map[string]*order.Order
}

func (r *memOrderRepo) FindByOrderID(_ context.Context, orderID string) (*order.Order, error) {
	if o, ok := r.byOrderID[orderID]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.byOrderID[o.OrderID] = o
	return nil
}

func (r *memOrderRepo) DeleteByOrderID(_ context.Context, orderID string) error {
	if _, ok := r.byOrderID[orderID]; !ok {
		return shared.ErrNotFound
	}
	delete(r.byOrderID, orderID)
	return nil
}

type testIdentity struct {
	userID   uuid.UUID
	username string
	role     string
}

// injectIdentity stands in for the JWT middleware in tests
func injectIdentity(id testIdentity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id.userID != uuid.Nil {
			c.Set(middleware.ContextKeyUserID, id.userID.String())
			c.Set(middleware.ContextKeyUsername, id.username)
			c.Set(middleware.ContextKeyRole, id.role)
		}
		c.Next()
	}
}

type orderEnv struct {
	engine   *gin.Engine
	carts    *memCartRepo
	products *memProductRepo
	orders   *memOrderRepo
}

func newOrderEnv(t *testing.T, id testIdentity) *orderEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &orderEnv{
		carts:    &memCartRepo{byName: map[string]*cart.Cart{}},
		products: &memProductRepo{byID: map[uuid.UUID]*catalog.Product{}},
		orders:   &memOrderRepo{byOrderID: map[string]*order.Order{}},
	}

	svc := apporder.NewOrderService(env.orders, env.carts, env.products, nil)
	engine := gin.New()
	engine.Use(injectIdentity(id))
	router.New(engine, nil).Register(NewOrderHandler(svc, nil))
	env.engine = engine
	return env
}

func (e *orderEnv) seedCartWithProduct(t *testing.T, cartName string, ownerID uuid.UUID, price float64, qty int) {
	t.Helper()
	p, err := catalog.NewProduct("Widget", "", valueobject.NewMoneyFromFloat(price, valueobject.USD), uuid.New(), uuid.New())
	require.NoError(t, err)
	e.products.byID[p.ID] = p

	c, err := cart.NewCart(cartName, ownerID)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(p.ID, qty))
	e.carts.byName[cartName] = c
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestPlaceOrderEndpoint(t *testing.T) {
	buyer := uuid.New()
	env := newOrderEnv(t, testIdentity{userID: buyer, username: "alice", role: "customer"})
	env.seedCartWithProduct(t, "alice_cart", buyer, 19.99, 3)

	rec := doJSON(t, env.engine, http.MethodPost, "/api/v1/orders", gin.H{"cart_name": "alice_cart"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			OrderID     string  `json:"order_id"`
			TotalAmount float64 `json:"total_amount"`
			Status      string  `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.OrderID)
	assert.InDelta(t, 59.97, resp.Data.TotalAmount, 0.001)
	assert.Equal(t, "pending", resp.Data.Status)
}

func TestPlaceOrderUnknownCart(t *testing.T) {
	env := newOrderEnv(t, testIdentity{userID: uuid.New(), username: "alice", role: "customer"})

	rec := doJSON(t, env.engine, http.MethodPost, "/api/v1/orders", gin.H{"cart_name": "ghost_cart"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestCancelOrderEndpoint(t *testing.T) {
	buyer := uuid.New()

	seed := func(t *testing.T, env *orderEnv) string {
		o, err := order.NewOrder("alice_cart", buyer, valueobject.NewMoneyFromFloat(10, valueobject.USD))
		require.NoError(t, err)
		o.ClearDomainEvents()
		env.orders.byOrderID[o.OrderID] = o
		return o.OrderID
	}

	t.Run("owner cancels", func(t *testing.T) {
		env := newOrderEnv(t, testIdentity{userID: buyer, username: "alice", role: "customer"})
		orderID := seed(t, env)

		rec := doJSON(t, env.engine, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", orderID), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, order.StatusCancelled, env.orders.byOrderID[orderID].Status)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		env := newOrderEnv(t, testIdentity{userID: uuid.New(), username: "mallory", role: "customer"})
		orderID := seed(t, env)

		rec := doJSON(t, env.engine, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", orderID), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		env := newOrderEnv(t, testIdentity{userID: uuid.New(), username: "root", role: "admin"})
		orderID := seed(t, env)

		rec := doJSON(t, env.engine, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", orderID), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "root", env.orders.byOrderID[orderID].CancelledBy)
	})
}

func TestStaffOnlyRoutes(t *testing.T) {
	t.Run("customer cannot list all orders", func(t *testing.T) {
		env := newOrderEnv(t, testIdentity{userID: uuid.New(), username: "alice", role: "customer"})
		rec := doJSON(t, env.engine, http.MethodGet, "/api/v1/orders", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous gets unauthorized", func(t *testing.T) {
		env := newOrderEnv(t, testIdentity{})
		rec := doJSON(t, env.engine, http.MethodGet, "/api/v1/orders", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
