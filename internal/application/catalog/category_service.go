package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/grocer/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new category, optionally under a parent
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
	}

	var category *catalog.Category
	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return nil, err
		}
		category, err = catalog.NewChildCategory(req.Code, req.Name, parent)
		if err != nil {
			return nil, err
		}
	} else {
		category, err = catalog.NewCategory(req.Code, req.Name)
		if err != nil {
			return nil, err
		}
	}

	if req.Description != "" || req.SortOrder != 0 {
		if err := category.Update(req.Name, req.Description, req.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, category.PullDomainEvents())

	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("code", category.Code))
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List lists categories ordered by level and display order
func (s *CategoryService) List(ctx context.Context, f CategoryListFilter) (shared.Paginated[CategoryResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  "sort_order",
		OrderDir: "asc",
	}.Normalize()
	switch {
	case f.ParentID != nil:
		filter = filter.With("parent_id", *f.ParentID)
	case f.RootOnly:
		filter = filter.With("root", true)
	}
	if f.IsActive != nil {
		filter = filter.With("is_active", *f.IsActive)
	}

	categories, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}
	total, err := s.categoryRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}
	return shared.NewPaginated(ToCategoryResponses(categories), total, filter.Page, filter.PageSize), nil
}

// Update updates a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	return s.apply(ctx, id, func(c *catalog.Category) error {
		return c.Update(req.Name, req.Description, req.SortOrder)
	})
}

// Activate makes a category visible
func (s *CategoryService) Activate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	return s.apply(ctx, id, (*catalog.Category).Activate)
}

// Deactivate hides a category
func (s *CategoryService) Deactivate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	return s.apply(ctx, id, (*catalog.Category).Deactivate)
}

// Delete removes a category with no children and no products
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("HAS_CHILDREN", "Cannot delete category with child categories")
	}

	n, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Cannot delete category that has products")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *CategoryService) apply(ctx context.Context, id uuid.UUID, change func(*catalog.Category) error) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(category); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, category.PullDomainEvents())

	resp := ToCategoryResponse(category)
	return &resp, nil
}

func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, pending []shared.DomainEvent) {
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Error("Failed to publish domain events", zap.Error(err))
	}
}
