package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler serves the shopping cart endpoints
type CartHandler struct {
	BaseHandler
	carts *appcart.CartService
}

// NewCartHandler creates a cart handler
func NewCartHandler(carts *appcart.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		BaseHandler: NewBaseHandler(logger),
		carts:       carts,
	}
}

// RegisterRoutes mounts the cart endpoints
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	carts := rg.Group("/carts")
	{
		carts.GET("/mine", h.GetMine)
		carts.GET("/:name", h.Get)
		carts.POST("/:name/items", h.AddItem)
		carts.DELETE("/:name/items/:productId", h.RemoveItem)
		carts.DELETE("/:name/items", h.Clear)
	}
}

type cartURI struct {
	Name string `uri:"name" binding:"required"`
}

// canAccess reports whether the caller may touch the cart. Ownership
// is established by owner ID or the <username>_cart naming convention;
// admins bypass the check.
func canAccess(c *gin.Context, resp *appcart.CartResponse) bool {
	if middleware.GetRole(c) == string(identity.RoleAdmin) {
		return true
	}
	userID, ok := middleware.GetUserID(c)
	if ok && resp.OwnerID == userID.String() {
		return true
	}
	return resp.CartName == cart.CartNameFor(middleware.GetUsername(c))
}

// GetMine returns the caller's cart, creating it when absent
func (h *CartHandler) GetMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}
	resp, err := h.carts.EnsureCart(c.Request.Context(), cart.CartNameFor(middleware.GetUsername(c)), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns a cart by name
func (h *CartHandler) Get(c *gin.Context) {
	var uri cartURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.carts.GetCart(c.Request.Context(), uri.Name)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !canAccess(c, resp) {
		h.Error(c, shared.NewDomainError("FORBIDDEN", "cart belongs to another user"))
		return
	}
	h.Success(c, resp)
}

// AddItem adds a product to the named cart, creating the cart on
// first use
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}

	var uri cartURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.carts.AddItem(c.Request.Context(), uri.Name, userID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !canAccess(c, resp) {
		h.Error(c, shared.NewDomainError("FORBIDDEN", "cart belongs to another user"))
		return
	}
	h.Success(c, resp)
}

type removeItemURI struct {
	Name      string `uri:"name" binding:"required"`
	ProductID string `uri:"productId" binding:"required,uuid"`
}

// RemoveItem removes one product from the named cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var uri removeItemURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}

	existing, err := h.carts.GetCart(c.Request.Context(), uri.Name)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !canAccess(c, existing) {
		h.Error(c, shared.NewDomainError("FORBIDDEN", "cart belongs to another user"))
		return
	}

	resp, err := h.carts.RemoveItem(c.Request.Context(), uri.Name, uuid.MustParse(uri.ProductID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear removes every item from the named cart
func (h *CartHandler) Clear(c *gin.Context) {
	var uri cartURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}

	existing, err := h.carts.GetCart(c.Request.Context(), uri.Name)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !canAccess(c, existing) {
		h.Error(c, shared.NewDomainError("FORBIDDEN", "cart belongs to another user"))
		return
	}

	resp, err := h.carts.ClearCart(c.Request.Context(), uri.Name)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}
