package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/report"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// DashboardHandler serves the admin and vendor dashboards
type DashboardHandler struct {
	BaseHandler
	reports *report.ReportService
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(reports *report.ReportService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		reports:     reports,
	}
}

// RegisterRoutes mounts the dashboard endpoints
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/admin", middleware.RequireAdmin(), h.Admin)
		dashboard.GET("/vendor", middleware.RequireRole(identity.RoleVendor, identity.RoleAdmin), h.Vendor)
	}
}

// Admin returns the store-wide dashboard
func (h *DashboardHandler) Admin(c *gin.Context) {
	resp, err := h.reports.GetAdminDashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Vendor returns the caller's vendor dashboard
func (h *DashboardHandler) Vendor(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.Error(c, shared.NewDomainError("UNAUTHORIZED", "authentication required"))
		return
	}
	resp, err := h.reports.GetVendorDashboard(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}
