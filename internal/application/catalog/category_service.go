package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService manages product categories
type CategoryService struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	logger     *zap.Logger
}

// NewCategoryService creates a category service
func NewCategoryService(
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categories: categories,
		products:   products,
		logger:     logger.Named("category-service"),
	}
}

// CreateCategoryRequest creates a new category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// UpdateCategoryRequest carries a partial category update
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// CategoryResponse is the API shape of a category
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse maps a category aggregate to its API shape
func ToCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CreateCategory adds a category with a unique name
func (s *CategoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if _, err := s.categories.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainErrorf("ALREADY_EXISTS", "category %q already exists", req.Name)
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	category, err := catalog.NewCategory(req.Name, req.Description, req.ImageURL)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created", zap.String("name", category.Name))
	return ToCategoryResponse(category), nil
}

// GetCategory fetches a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}

// ListCategories returns all categories
func (s *CategoryService) ListCategories(ctx context.Context, filter shared.Filter) ([]*CategoryResponse, error) {
	categories, err := s.categories.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*CategoryResponse, 0, len(categories))
	for _, c := range categories {
		items = append(items, ToCategoryResponse(c))
	}
	return items, nil
}

// UpdateCategory applies a partial update, keeping names unique
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		if existing, err := s.categories.FindByName(ctx, *req.Name); err == nil && existing.ID != id {
			return nil, shared.NewDomainErrorf("ALREADY_EXISTS", "category %q already exists", *req.Name)
		} else if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		category.SetDescription(*req.Description)
	}
	if req.ImageURL != nil {
		category.SetImageURL(*req.ImageURL)
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}

// DeleteCategory removes a category. Deletion is refused while any
// product still references it.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainErrorf("VALIDATION_ERROR",
			"category is still referenced by %d product(s)", count)
	}
	return s.categories.Delete(ctx, id)
}
