package report

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	recentOrderLimit = 10
	topProductLimit  = 5
)

// ReportService assembles the admin and vendor dashboards
type ReportService struct {
	users    identity.UserRepository
	products catalog.ProductRepository
	orders   order.OrderRepository
	logger   *zap.Logger
}

// NewReportService creates a report service
func NewReportService(
	users identity.UserRepository,
	products catalog.ProductRepository,
	orders order.OrderRepository,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		users:    users,
		products: products,
		orders:   orders,
		logger:   logger.Named("report-service"),
	}
}

// AdminDashboard summarizes the whole store
type AdminDashboard struct {
	TotalUsers     int64                         `json:"total_users"`
	TotalCustomers int64                         `json:"total_customers"`
	TotalProducts  int64                         `json:"total_products"`
	TotalOrders    int64                         `json:"total_orders"`
	TotalRevenue   float64                       `json:"total_revenue"`
	RecentOrders   []*apporder.OrderResponse     `json:"recent_orders"`
	TopProducts    []*appcatalog.ProductResponse `json:"top_products"`
}

// VendorDashboard summarizes one vendor's catalog
type VendorDashboard struct {
	ProductCount int64                         `json:"product_count"`
	TotalSales   int64                         `json:"total_sales"`
	Revenue      float64                       `json:"revenue"`
	Products     []*appcatalog.ProductResponse `json:"products"`
}

// GetAdminDashboard builds the store-wide dashboard. Revenue excludes
// cancelled orders.
func (s *ReportService) GetAdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	totalUsers, err := s.users.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	totalCustomers, err := s.users.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"role": string(identity.RoleCustomer)},
	})
	if err != nil {
		return nil, err
	}
	totalProducts, err := s.products.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orders.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.SumTotalAmount(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.orders.FindRecent(ctx, recentOrderLimit)
	if err != nil {
		return nil, err
	}
	recentOrders := make([]*apporder.OrderResponse, 0, len(recent))
	for _, o := range recent {
		recentOrders = append(recentOrders, apporder.ToOrderResponse(o))
	}

	top, err := s.products.FindTopSelling(ctx, topProductLimit)
	if err != nil {
		return nil, err
	}
	topProducts := make([]*appcatalog.ProductResponse, 0, len(top))
	for _, p := range top {
		topProducts = append(topProducts, appcatalog.ToProductResponse(p))
	}

	return &AdminDashboard{
		TotalUsers:     totalUsers,
		TotalCustomers: totalCustomers,
		TotalProducts:  totalProducts,
		TotalOrders:    totalOrders,
		TotalRevenue:   revenue.Round(2).Float64(),
		RecentOrders:   recentOrders,
		TopProducts:    topProducts,
	}, nil
}

// GetVendorDashboard builds the dashboard for one vendor. Revenue is
// estimated from the sales counter at the current price.
func (s *ReportService) GetVendorDashboard(ctx context.Context, vendorID uuid.UUID) (*VendorDashboard, error) {
	owned, err := s.products.FindByOwner(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	var totalSales int64
	var revenue float64
	products := make([]*appcatalog.ProductResponse, 0, len(owned))
	for _, p := range owned {
		totalSales += int64(p.Sales)
		revenue += p.Price.MultiplyByInt(int64(p.Sales)).Round(2).Float64()
		products = append(products, appcatalog.ToProductResponse(p))
	}

	return &VendorDashboard{
		ProductCount: int64(len(owned)),
		TotalSales:   totalSales,
		Revenue:      revenue,
		Products:     products,
	}, nil
}
