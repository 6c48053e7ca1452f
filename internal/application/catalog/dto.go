package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Code        string     `json:"code" binding:"required,min=1,max=50"`
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Description string     `json:"description" binding:"max=1000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
	SortOrder   int    `json:"sort_order"`
}

// CategoryListFilter narrows category listings
type CategoryListFilter struct {
	Search   string     `form:"search"`
	ParentID *uuid.UUID `form:"parent_id"`
	RootOnly bool       `form:"root"`
	IsActive *bool      `form:"is_active"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Level       int        `json:"level"`
	SortOrder   int        `json:"sort_order"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	StoreID       uuid.UUID       `json:"store_id" binding:"required"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	DistributorID *uuid.UUID      `json:"distributor_id"`
	SKU           string          `json:"sku" binding:"required,min=1,max=64"`
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   string          `json:"description" binding:"max=2000"`
	Unit          string          `json:"unit" binding:"required,min=1,max=20"`
	MRP           decimal.Decimal `json:"mrp"`
	Price         decimal.Decimal `json:"price"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	HSNCode       string          `json:"hsn_code" binding:"max=8"`
	Stock         int             `json:"stock" binding:"min=0"`
}

// UpdateProductRequest represents a request to update a product. Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	Unit          *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	HSNCode       *string          `json:"hsn_code" binding:"omitempty,max=8"`
	MRP           *decimal.Decimal `json:"mrp"`
	Price         *decimal.Decimal `json:"price"`
	GSTRate       *decimal.Decimal `json:"gst_rate"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	DistributorID *uuid.UUID       `json:"distributor_id"`
}

// AdjustStockRequest applies a signed stock change
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}

// ProductListFilter narrows product listings
type ProductListFilter struct {
	Search        string           `form:"search"`
	StoreID       *uuid.UUID       `form:"store_id"`
	CategoryID    *uuid.UUID       `form:"category_id"`
	DistributorID *uuid.UUID       `form:"distributor_id"`
	Status        string           `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE OUT_OF_STOCK"`
	InStock       bool             `form:"in_stock"`
	MinPrice      *decimal.Decimal `form:"min_price"`
	MaxPrice      *decimal.Decimal `form:"max_price"`
	OrderBy       string           `form:"order_by"`
	OrderDir      string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page          int              `form:"page" binding:"omitempty,min=1"`
	PageSize      int              `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	StoreID         uuid.UUID       `json:"store_id"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	DistributorID   *uuid.UUID      `json:"distributor_id,omitempty"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Unit            string          `json:"unit"`
	MRP             decimal.Decimal `json:"mrp"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	GSTRate         decimal.Decimal `json:"gst_rate"`
	HSNCode         string          `json:"hsn_code,omitempty"`
	StockQuantity   int             `json:"stock_quantity"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToCategoryResponse converts a domain category to a response DTO
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		Level:       c.Level,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		StoreID:         p.StoreID,
		CategoryID:      p.CategoryID,
		DistributorID:   p.DistributorID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Unit:            p.Unit,
		MRP:             p.MRP,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent(),
		GSTRate:         p.GSTRate,
		HSNCode:         p.HSNCode,
		StockQuantity:   p.StockQuantity,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
