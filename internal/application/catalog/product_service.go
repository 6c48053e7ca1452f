package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/grocer/backend/internal/domain/distributor"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"go.uber.org/zap"
)

// ProductService handles product business operations
type ProductService struct {
	productRepo     catalog.ProductRepository
	categoryRepo    catalog.CategoryRepository
	storeRepo       store.StoreRepository
	distributorRepo distributor.DistributorRepository
	events          shared.EventPublisher
	logger          *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storeRepo store.StoreRepository,
	distributorRepo distributor.DistributorRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		storeRepo:       storeRepo,
		distributorRepo: distributorRepo,
		events:          events,
		logger:          logger,
	}
}

// Create creates a new product in a store
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if _, err := s.storeRepo.FindByID(ctx, req.StoreID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_STORE", "Store not found")
		}
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySKU(ctx, req.StoreID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists in the store")
	}

	if err := s.checkReferences(ctx, req.CategoryID, req.DistributorID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.StoreID, req.SKU, req.Name, req.Unit, req.MRP, req.Price, req.GSTRate)
	if err != nil {
		return nil, err
	}
	if req.Description != "" || req.HSNCode != "" {
		if err := product.Update(req.Name, req.Description, req.Unit, req.HSNCode); err != nil {
			return nil, err
		}
	}
	product.SetCategory(req.CategoryID)
	product.SetDistributor(req.DistributorID)
	if req.Stock > 0 {
		if err := product.AdjustStock(req.Stock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, product.PullDomainEvents())

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("store_id", product.StoreID.String()),
		zap.String("sku", product.SKU),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List lists products with filtering and pagination
func (s *ProductService) List(ctx context.Context, f ProductListFilter) (shared.Paginated[ProductResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
	}.Normalize()
	if f.StoreID != nil {
		filter = filter.With("store_id", *f.StoreID)
	}
	if f.CategoryID != nil {
		filter = filter.With("category_id", *f.CategoryID)
	}
	if f.DistributorID != nil {
		filter = filter.With("distributor_id", *f.DistributorID)
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}
	if f.InStock {
		filter = filter.With("in_stock", true)
	}
	if f.MinPrice != nil {
		filter = filter.With("min_price", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		filter = filter.With("max_price", *f.MaxPrice)
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize), nil
}

// Update applies the non-nil fields of req
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil || req.Unit != nil || req.HSNCode != nil {
		if err := product.Update(
			valueOr(req.Name, product.Name),
			valueOr(req.Description, product.Description),
			valueOr(req.Unit, product.Unit),
			valueOr(req.HSNCode, product.HSNCode),
		); err != nil {
			return nil, err
		}
	}

	if req.MRP != nil || req.Price != nil || req.GSTRate != nil {
		if err := product.SetPricing(
			valueOr(req.MRP, product.MRP),
			valueOr(req.Price, product.Price),
			valueOr(req.GSTRate, product.GSTRate),
		); err != nil {
			return nil, err
		}
	}

	if err := s.checkReferences(ctx, req.CategoryID, req.DistributorID); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		product.SetCategory(req.CategoryID)
	}
	if req.DistributorID != nil {
		product.SetDistributor(req.DistributorID)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, product.PullDomainEvents())

	resp := ToProductResponse(product)
	return &resp, nil
}

// Activate puts a product on sale
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, id, (*catalog.Product).Activate)
}

// Deactivate takes a product off sale
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, id, (*catalog.Product).Deactivate)
}

// AdjustStock applies a signed stock change. The change is validated on the
// loaded product and persisted with a guarded update so concurrent checkouts
// cannot drive stock below zero.
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Stock delta cannot be zero")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}

	if req.Delta < 0 {
		err = s.productRepo.DecrementStock(ctx, id, -req.Delta)
	} else {
		err = s.productRepo.IncrementStock(ctx, id, req.Delta)
	}
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, product.PullDomainEvents())

	s.logger.Info("Product stock adjusted",
		zap.String("product_id", id.String()),
		zap.Int("delta", req.Delta),
		zap.String("reason", req.Reason),
	)

	current, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(current)
	return &resp, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) transition(ctx context.Context, id uuid.UUID, apply func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, product.PullDomainEvents())

	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) checkReferences(ctx context.Context, categoryID, distributorID *uuid.UUID) error {
	if categoryID != nil {
		category, err := s.categoryRepo.FindByID(ctx, *categoryID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return err
		}
		if !category.IsActive {
			return shared.NewDomainError("INVALID_CATEGORY", "Category is inactive")
		}
	}
	if distributorID != nil && s.distributorRepo != nil {
		if _, err := s.distributorRepo.FindByID(ctx, *distributorID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_DISTRIBUTOR", "Distributor not found")
			}
			return err
		}
	}
	return nil
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
