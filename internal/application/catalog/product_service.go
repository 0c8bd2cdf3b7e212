package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ObjectStorage abstracts the asset store used for product images
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string) (string, error)
	ObjectURL(key string) string
	DeleteObject(ctx context.Context, key string) error
}

// Principal identifies the authenticated user for catalog operations
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     identity.Role
}

// ProductService manages the product catalog
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	storage    ObjectStorage
	logger     *zap.Logger
}

// NewProductService creates a product service
func NewProductService(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products:   products,
		categories: categories,
		logger:     logger.Named("product-service"),
	}
}

// SetObjectStorage wires the image store
func (s *ProductService) SetObjectStorage(storage ObjectStorage) {
	s.storage = storage
}

// CreateProductRequest creates a new product
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"min=0"`
	CategoryID  string   `json:"category_id" binding:"required,uuid"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock" binding:"min=0"`
}

// UpdateProductRequest carries a partial product update
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Images      []string `json:"images,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	InStock     *bool    `json:"in_stock,omitempty"`
}

// ProductResponse is the API shape of a product
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	OldPrice    *float64  `json:"old_price,omitempty"`
	Images      []string  `json:"images"`
	CategoryID  string    `json:"category_id"`
	OwnerID     string    `json:"owner_id"`
	Stock       int       `json:"stock"`
	Sales       int       `json:"sales"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Category fields joined at read time
	CategoryName string `json:"category_name,omitempty"`
}

// UploadURLResponse carries a presigned upload target
type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
}

// ToProductResponse maps a product aggregate to its API shape
func ToProductResponse(p *catalog.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Round(2).Float64(),
		Images:      p.Images,
		CategoryID:  p.CategoryID.String(),
		OwnerID:     p.OwnerID.String(),
		Stock:       p.Stock,
		Sales:       p.Sales,
		InStock:     p.InStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.OldPrice != nil {
		old := p.OldPrice.Round(2).Float64()
		resp.OldPrice = &old
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}

// CreateProduct adds a product owned by the requesting principal. The
// principal must be allowed to manage the catalog and the category
// must exist.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest, principal Principal) (*ProductResponse, error) {
	if !principal.Role.CanManageCatalog() {
		return nil, shared.NewDomainError("FORBIDDEN", "only vendors and admins can create products")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid category id")
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "category %s does not exist", categoryID)
		}
		return nil, err
	}

	price := valueobject.NewMoneyFromFloat(req.Price, valueobject.DefaultCurrency)
	product, err := catalog.NewProduct(req.Name, req.Description, price, categoryID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if len(req.Images) > 0 {
		product.SetImages(req.Images)
	}
	if req.Stock > 0 {
		if err := product.SetStock(req.Stock); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	return ToProductResponse(product), nil
}

// GetProduct fetches a product with its category name joined
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	if category, err := s.categories.FindByID(ctx, product.CategoryID); err == nil {
		resp.CategoryName = category.Name
	}
	return resp, nil
}

// ListProducts returns a page of products
func (s *ProductService) ListProducts(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	// join category names for the page
	categoryNames := make(map[uuid.UUID]string)
	items := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		resp := ToProductResponse(p)
		name, ok := categoryNames[p.CategoryID]
		if !ok {
			if category, err := s.categories.FindByID(ctx, p.CategoryID); err == nil {
				name = category.Name
			}
			categoryNames[p.CategoryID] = name
		}
		resp.CategoryName = name
		items = append(items, resp)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UpdateProduct applies a partial update. Only admins and the owner may
// modify a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest, principal Principal) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(product, principal); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		product.SetDescription(*req.Description)
	}
	if req.Price != nil {
		price := valueobject.NewMoneyFromFloat(*req.Price, valueobject.DefaultCurrency)
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid category id")
		}
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "category %s does not exist", categoryID)
			}
			return nil, err
		}
		if err := product.SetCategory(categoryID); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		product.SetImages(req.Images)
	}
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.InStock != nil {
		product.SetInStock(*req.InStock)
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// DeleteProduct removes a product. Only admins and the owner may delete.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID, principal Principal) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(product, principal); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

// GenerateImageUploadURL presigns an upload slot for a product image
func (s *ProductService) GenerateImageUploadURL(ctx context.Context, contentType string) (*UploadURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "object storage is not configured")
	}
	ext := extensionFor(contentType)
	if ext == "" {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "unsupported image content type: %s", contentType)
	}

	key := fmt.Sprintf("products/%s%s", uuid.NewString(), ext)
	uploadURL, err := s.storage.GenerateUploadURL(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadURLResponse{
		UploadURL: uploadURL,
		PublicURL: s.storage.ObjectURL(key),
		Key:       key,
	}, nil
}

func (s *ProductService) authorize(product *catalog.Product, principal Principal) error {
	if principal.Role == identity.RoleAdmin {
		return nil
	}
	if product.OwnedBy(principal.UserID) {
		return nil
	}
	return shared.NewDomainError("FORBIDDEN", "product belongs to another user")
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
