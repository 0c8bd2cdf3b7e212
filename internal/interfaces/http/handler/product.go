package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ProductHandler serves the product catalog endpoints
type ProductHandler struct {
	BaseHandler
	products *appcatalog.ProductService
}

// NewProductHandler creates a product handler
func NewProductHandler(products *appcatalog.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		BaseHandler: NewBaseHandler(logger),
		products:    products,
	}
}

// RegisterRoutes mounts the product endpoints
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.POST("", h.Create)
		products.PUT("/:id", h.Update)
		products.DELETE("/:id", h.Delete)
		products.POST("/upload-url", h.UploadURL)
	}
}

func principalFrom(c *gin.Context) (appcatalog.Principal, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return appcatalog.Principal{}, false
	}
	return appcatalog.Principal{
		UserID:   userID,
		Username: middleware.GetUsername(c),
		Role:     identity.Role(middleware.GetRole(c)),
	}, true
}

// List returns a page of products, filterable by category
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := ListFilter(req)
	if categoryID := c.Query("category_id"); categoryID != "" {
		filter.Filters = map[string]interface{}{"category_id": categoryID}
	}

	page, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, dto.NewMeta(page.Page, page.PageSize, page.Total))
}

// Get returns one product
func (h *ProductHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.products.GetProduct(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Create adds a product owned by the caller
func (h *ProductHandler) Create(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}

	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.products.CreateProduct(c.Request.Context(), req, principal)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}

// Update applies a partial update to a product
func (h *ProductHandler) Update(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.products.UpdateProduct(c.Request.Context(), uuid.MustParse(uri.ID), req, principal)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.products.DeleteProduct(c.Request.Context(), uuid.MustParse(req.ID), principal); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

type uploadURLRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// UploadURL presigns an upload slot for a product image
func (h *ProductHandler) UploadURL(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok || !principal.Role.CanManageCatalog() {
		h.Error(c, shared.NewDomainError("FORBIDDEN", "only vendors and admins can upload product images"))
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.products.GenerateImageUploadURL(c.Request.Context(), req.ContentType)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}
