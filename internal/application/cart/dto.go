package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the customer's cart at the product's store
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=50"`
}

// UpdateItemRequest sets a line quantity; zero removes the line
type UpdateItemRequest struct {
	StoreID  uuid.UUID `json:"store_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"min=0,max=50"`
}

// ApplyCouponRequest attaches a coupon code to a cart
type ApplyCouponRequest struct {
	StoreID uuid.UUID `json:"store_id" binding:"required"`
	Code    string    `json:"code" binding:"required"`
}

// CartItemResponse represents a cart line
type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	GSTRate   decimal.Decimal `json:"gst_rate"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	StoreID    uuid.UUID          `json:"store_id"`
	Items      []CartItemResponse `json:"items"`
	ItemCount  int                `json:"item_count"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	CouponCode string             `json:"coupon_code,omitempty"`
	// Discount is a preview against the subtotal; delivery is priced at checkout
	Discount  decimal.Decimal `json:"discount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToCartResponse converts a domain cart to a response DTO
func ToCartResponse(c *cart.Cart, discount decimal.Decimal) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		items[i] = CartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			UnitPrice: it.UnitPrice,
			GSTRate:   it.GSTRate,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		}
	}
	return CartResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		StoreID:    c.StoreID,
		Items:      items,
		ItemCount:  c.ItemCount(),
		Subtotal:   c.Subtotal(),
		CouponCode: c.CouponCode,
		Discount:   discount,
		UpdatedAt:  c.UpdatedAt,
	}
}
