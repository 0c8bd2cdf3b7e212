package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CategoryHandler serves the category endpoints
type CategoryHandler struct {
	BaseHandler
	categories *appcatalog.CategoryService
}

// NewCategoryHandler creates a category handler
func NewCategoryHandler(categories *appcatalog.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler: NewBaseHandler(logger),
		categories:  categories,
	}
}

// RegisterRoutes mounts the category endpoints. Writes require a
// catalog management role.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := middleware.RequireRole(identity.RoleAdmin, identity.RoleVendor)
	categories := rg.Group("/categories")
	{
		categories.GET("", h.List)
		categories.GET("/:id", h.Get)
		categories.POST("", manage, h.Create)
		categories.PUT("/:id", manage, h.Update)
		categories.DELETE("/:id", middleware.RequireAdmin(), h.Delete)
	}
}

// List returns all categories
func (h *CategoryHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	items, err := h.categories.ListCategories(c.Request.Context(), ListFilter(req))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, items)
}

// Get returns one category
func (h *CategoryHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.categories.GetCategory(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Create adds a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req appcatalog.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.categories.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}

// Update applies a partial update to a category
func (h *CategoryHandler) Update(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req appcatalog.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.categories.UpdateCategory(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an empty category
func (h *CategoryHandler) Delete(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.categories.DeleteCategory(c.Request.Context(), uuid.MustParse(req.ID)); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
