package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartService manages shopping carts
type CartService struct {
	carts    cart.CartRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a cart service
func NewCartService(carts cart.CartRepository, products catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger.Named("cart-service"),
	}
}

// AddItemRequest adds a product to a cart
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CartItemResponse is the API shape of a cart line item
type CartItemResponse struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartResponse is the API shape of a cart
type CartResponse struct {
	ID        string             `json:"id"`
	CartName  string             `json:"cart_name"`
	OwnerID   string             `json:"owner_id"`
	Items     []CartItemResponse `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ToCartResponse maps a cart aggregate to its API shape
func ToCartResponse(c *cart.Cart) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		})
	}
	return &CartResponse{
		ID:        c.ID.String(),
		CartName:  c.CartName,
		OwnerID:   c.OwnerID.String(),
		Items:     items,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// EnsureCart returns the named cart, creating it when absent
func (s *CartService) EnsureCart(ctx context.Context, cartName string, ownerID uuid.UUID) (*CartResponse, error) {
	c, err := s.carts.FindByName(ctx, cartName)
	if err == nil {
		return ToCartResponse(c), nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	c, err = cart.NewCart(cartName, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Cart created", zap.String("cart_name", cartName))
	return ToCartResponse(c), nil
}

// GetCart fetches a cart by name
func (s *CartService) GetCart(ctx context.Context, cartName string) (*CartResponse, error) {
	c, err := s.carts.FindByName(ctx, cartName)
	if err != nil {
		return nil, err
	}
	return ToCartResponse(c), nil
}

// AddItem adds a product to the named cart. The product must exist;
// stock levels are not checked.
func (s *CartService) AddItem(ctx context.Context, cartName string, ownerID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid product id")
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.carts.FindByName(ctx, cartName)
	if shared.IsNotFound(err) {
		c, err = cart.NewCart(cartName, ownerID)
	}
	if err != nil {
		return nil, err
	}

	if err := c.AddItem(productID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return ToCartResponse(c), nil
}

// RemoveItem removes a product from the named cart
func (s *CartService) RemoveItem(ctx context.Context, cartName string, productID uuid.UUID) (*CartResponse, error) {
	c, err := s.carts.FindByName(ctx, cartName)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(productID); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return ToCartResponse(c), nil
}

// ClearCart removes all items from the named cart
func (s *CartService) ClearCart(ctx context.Context, cartName string) (*CartResponse, error) {
	c, err := s.carts.FindByName(ctx, cartName)
	if err != nil {
		return nil, err
	}
	c.Clear()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return ToCartResponse(c), nil
}
