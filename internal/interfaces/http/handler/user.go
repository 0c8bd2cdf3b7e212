package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appidentity "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// UserHandler serves account management endpoints
type UserHandler struct {
	BaseHandler
	users *appidentity.UserService
}

// NewUserHandler creates a user handler
func NewUserHandler(users *appidentity.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		users:       users,
	}
}

// RegisterRoutes mounts the user endpoints. Listing and role changes
// are admin only.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", middleware.RequireAdmin(), h.List)
		users.GET("/:id", h.Get)
		users.PUT("/:id/role", middleware.RequireAdmin(), h.UpdateRole)
		users.PUT("/profile", h.UpdateProfile)
	}
}

// List returns a page of users
func (h *UserHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := ListFilter(req)
	if role := c.Query("role"); role != "" {
		filter.Filters = map[string]interface{}{"role": role}
	}

	page, err := h.users.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, dto.NewMeta(page.Page, page.PageSize, page.Total))
}

// Get returns one user. Non-admins can only fetch themselves.
func (h *UserHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}
	id := uuid.MustParse(req.ID)

	if middleware.GetRole(c) != string(identity.RoleAdmin) {
		callerID, ok := middleware.GetUserID(c)
		if !ok || callerID != id {
			h.Error(c, shared.NewDomainError("FORBIDDEN", "cannot access another user's account"))
			return
		}
	}

	resp, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes a user's role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.users.UpdateRole(c.Request.Context(),
		uuid.MustParse(uri.ID),
		identity.Role(req.Role),
		identity.Role(middleware.GetRole(c)),
	)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateProfile updates the authenticated user's own profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}

	var req appidentity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}
