package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderHandler serves the order endpoints
type OrderHandler struct {
	BaseHandler
	orders *apporder.OrderService
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orders *apporder.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		orders:      orders,
	}
}

// RegisterRoutes mounts the order endpoints. Listing all orders,
// status changes and deletion are restricted to staff roles.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	staff := middleware.RequireRole(identity.RoleAdmin, identity.RoleManager, identity.RoleSupport)
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Place)
		orders.GET("", staff, h.List)
		orders.GET("/mine", h.ListMine)
		orders.GET("/:orderId", h.Get)
		orders.PUT("/:orderId", staff, h.Update)
		orders.PUT("/:orderId/status", staff, h.UpdateStatus)
		orders.POST("/:orderId/cancel", h.Cancel)
		orders.DELETE("/:orderId", middleware.RequireAdmin(), h.Delete)
	}
}

func actorFrom(c *gin.Context) (apporder.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return apporder.Actor{}, false
	}
	return apporder.Actor{
		UserID:   userID,
		Username: middleware.GetUsername(c),
		Role:     identity.Role(middleware.GetRole(c)),
	}, true
}

type orderURI struct {
	OrderID string `uri:"orderId" binding:"required"`
}

// Place converts the named cart into an order
func (h *OrderHandler) Place(c *gin.Context) {
	var req apporder.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns a page of all orders, newest placements first
func (h *OrderHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := ListFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters = map[string]interface{}{"status": status}
	}

	page, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, dto.NewMeta(page.Page, page.PageSize, page.Total))
}

// ListMine returns the caller's own orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	items, err := h.orders.ListUserOrders(c.Request.Context(), actor.UserID, ListFilter(req))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, items)
}

// Get returns one order by its opaque order ID
func (h *OrderHandler) Get(c *gin.Context) {
	var uri orderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.orders.GetOrder(c.Request.Context(), uri.OrderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Update applies a partial update to an order
func (h *OrderHandler) Update(c *gin.Context) {
	actor, _ := actorFrom(c)

	var uri orderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req apporder.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.UpdateOrder(c.Request.Context(), uri.OrderID, req, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus overwrites an order's status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, _ := actorFrom(c)

	var uri orderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.UpdateOrderStatus(c.Request.Context(), uri.OrderID, req.Status, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels an order on behalf of its owner
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}

	var uri orderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.CancelOrder(c.Request.Context(), uri.OrderID, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an order
func (h *OrderHandler) Delete(c *gin.Context) {
	var uri orderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), uri.OrderID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
