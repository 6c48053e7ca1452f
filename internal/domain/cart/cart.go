package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxItemQuantity caps the quantity of a single line
const MaxItemQuantity = 50

// CartItem is a line in a cart. Price and tax rate are snapshotted when added.
type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	SKU       string          `gorm:"column:sku;type:varchar(64)"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:0"`
	HSNCode   string          `gorm:"column:hsn_code;type:varchar(8)"`
	Quantity  int             `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal returns unit price times quantity
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProductSnapshot is what the cart needs to know about a product when adding it
type ProductSnapshot struct {
	ProductID uuid.UUID
	StoreID   uuid.UUID
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
	GSTRate   decimal.Decimal
	HSNCode   string
}

// Cart is a customer's open basket at one store
type Cart struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cart_customer_store,priority:1"`
	StoreID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cart_customer_store,priority:2"`
	CouponCode string     `gorm:"type:varchar(32)"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart
func NewCart(customerID, storeID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		StoreID:           storeID,
		Items:             make([]CartItem, 0),
	}, nil
}

// AddItem adds qty of a product, merging with an existing line.
// Returns the resulting line quantity so callers can check stock.
func (c *Cart) AddItem(p ProductSnapshot, qty int) (int, error) {
	if qty <= 0 {
		return 0, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.StoreID != c.StoreID {
		return 0, shared.NewDomainError("STORE_MISMATCH", "Product belongs to a different store")
	}

	now := time.Now()
	for i := range c.Items {
		if c.Items[i].ProductID == p.ProductID {
			next := c.Items[i].Quantity + qty
			if next > MaxItemQuantity {
				return 0, shared.NewDomainError("QUANTITY_LIMIT", "Cannot add more than 50 of one item")
			}
			c.Items[i].Quantity = next
			c.Items[i].UnitPrice = p.UnitPrice
			c.Items[i].GSTRate = p.GSTRate
			c.Items[i].UpdatedAt = now
			c.touch()
			return next, nil
		}
	}

	if qty > MaxItemQuantity {
		return 0, shared.NewDomainError("QUANTITY_LIMIT", "Cannot add more than 50 of one item")
	}
	c.Items = append(c.Items, CartItem{
		ID:        uuid.New(),
		CartID:    c.ID,
		ProductID: p.ProductID,
		Name:      p.Name,
		SKU:       p.SKU,
		UnitPrice: p.UnitPrice,
		GSTRate:   p.GSTRate,
		HSNCode:   p.HSNCode,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	})
	c.touch()
	return qty, nil
}

// UpdateQuantity sets a line quantity; zero removes the line
func (c *Cart) UpdateQuantity(productID uuid.UUID, qty int) error {
	if qty < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if qty > MaxItemQuantity {
		return shared.NewDomainError("QUANTITY_LIMIT", "Cannot add more than 50 of one item")
	}
	if qty == 0 {
		return c.RemoveItem(productID)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.Items[i].UpdatedAt = time.Now()
			c.touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Item is not in the cart")
}

// RemoveItem removes a line
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Item is not in the cart")
}

// Item returns the line for a product
func (c *Cart) Item(productID uuid.UUID) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// ApplyCoupon attaches a coupon code. Eligibility is checked by the caller.
func (c *Cart) ApplyCoupon(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Coupon code cannot be empty")
	}
	c.CouponCode = code
	c.touch()
	return nil
}

// RemoveCoupon detaches the coupon code
func (c *Cart) RemoveCoupon() {
	c.CouponCode = ""
	c.touch()
}

// Clear empties the cart after checkout
func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.CouponCode = ""
	c.touch()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal is the sum of line totals
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// ItemCount is the total number of units
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
