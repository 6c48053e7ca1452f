package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the sale status of a product
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "ACTIVE"
	ProductStatusInactive   ProductStatus = "INACTIVE"
	ProductStatusOutOfStock ProductStatus = "OUT_OF_STOCK"
)

// ValidGSTRates are the GST slabs a product can be taxed at
var ValidGSTRates = []int64{0, 5, 12, 18, 28}

// IsValidGSTRate checks rate against the GST slabs
func IsValidGSTRate(rate decimal.Decimal) bool {
	for _, r := range ValidGSTRates {
		if rate.Equal(decimal.NewFromInt(r)) {
			return true
		}
	}
	return false
}

// Product is a sellable item stocked by one store. Prices are GST-inclusive.
type Product struct {
	shared.BaseAggregateRoot
	StoreID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_store_sku,priority:1"`
	DistributorID *uuid.UUID      `gorm:"type:uuid;index"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
	SKU           string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex:idx_product_store_sku,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	MRP           decimal.Decimal `gorm:"column:mrp;type:decimal(12,2);not null"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GSTRate       decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:0"`
	HSNCode       string          `gorm:"column:hsn_code;type:varchar(8)"`
	StockQuantity int             `gorm:"not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in a store
func NewProduct(storeID uuid.UUID, sku, name, unit string, mrp, price, gstRate decimal.Decimal) (*Product, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if err := validateCode("SKU", sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if err := validatePricing(mrp, price, gstRate); err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StoreID:           storeID,
		SKU:               strings.ToUpper(sku),
		Name:              strings.TrimSpace(name),
		Unit:              strings.TrimSpace(unit),
		MRP:               mrp.Round(2),
		Price:             price.Round(2),
		GSTRate:           gstRate,
		Status:            ProductStatusOutOfStock,
	}

	p.AddDomainEvent(NewProductCreatedEvent(p))

	return p, nil
}

// Update updates descriptive fields
func (p *Product) Update(name, description, unit, hsnCode string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if strings.TrimSpace(unit) == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(hsnCode) > 8 {
		return shared.NewDomainError("INVALID_HSN", "HSN code cannot exceed 8 characters")
	}
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Unit = strings.TrimSpace(unit)
	p.HSNCode = strings.TrimSpace(hsnCode)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetPricing updates MRP, selling price and GST rate
func (p *Product) SetPricing(mrp, price, gstRate decimal.Decimal) error {
	if err := validatePricing(mrp, price, gstRate); err != nil {
		return err
	}
	oldPrice := p.Price
	p.MRP = mrp.Round(2)
	p.Price = price.Round(2)
	p.GSTRate = gstRate
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if !oldPrice.Equal(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}
	return nil
}

// SetCategory assigns or clears the category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetDistributor records the distributor supplying the product
func (p *Product) SetDistributor(distributorID *uuid.UUID) {
	p.DistributorID = distributorID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AdjustStock applies a signed quantity change. Stock never goes negative.
// Crossing zero toggles between OUT_OF_STOCK and ACTIVE; INACTIVE is left alone.
func (p *Product) AdjustStock(delta int) error {
	next := p.StockQuantity + delta
	if next < 0 {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+p.Name)
	}
	p.StockQuantity = next
	if p.Status != ProductStatusInactive {
		if next == 0 {
			p.Status = ProductStatusOutOfStock
		} else {
			p.Status = ProductStatusActive
		}
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStockAdjustedEvent(p, delta))

	return nil
}

// Activate puts the product back on sale
func (p *Product) Activate() error {
	if p.Status != ProductStatusInactive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	if p.StockQuantity > 0 {
		p.Status = ProductStatusActive
	} else {
		p.Status = ProductStatusOutOfStock
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate takes the product off sale
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsSellable reports whether qty units can be put in a cart
func (p *Product) IsSellable(qty int) error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("PRODUCT_UNAVAILABLE", p.Name+" is not available")
	}
	if qty > p.StockQuantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Only "+strconv.Itoa(p.StockQuantity)+" left of "+p.Name)
	}
	return nil
}

// DiscountPercent is the saving against MRP, for display
func (p *Product) DiscountPercent() decimal.Decimal {
	if p.MRP.IsZero() {
		return decimal.Zero
	}
	return p.MRP.Sub(p.Price).Div(p.MRP).Mul(decimal.NewFromInt(100)).Round(0)
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePricing(mrp, price, gstRate decimal.Decimal) error {
	if !mrp.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "MRP must be positive")
	}
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price must be positive")
	}
	if price.GreaterThan(mrp) {
		return shared.NewDomainError("PRICE_ABOVE_MRP", "Selling price cannot exceed MRP")
	}
	if !IsValidGSTRate(gstRate) {
		return shared.NewDomainError("INVALID_GST_RATE", "GST rate must be one of 0, 5, 12, 18, 28")
	}
	return nil
}
