package coupon

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscountType determines how a coupon's value is applied
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "PERCENTAGE"
	DiscountTypeFixed        DiscountType = "FIXED"
	DiscountTypeFreeDelivery DiscountType = "FREE_DELIVERY"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypePercentage, DiscountTypeFixed, DiscountTypeFreeDelivery:
		return true
	}
	return false
}

// CouponStatus represents the status of a coupon
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "ACTIVE"
	CouponStatusInactive CouponStatus = "INACTIVE"
	CouponStatusExpired  CouponStatus = "EXPIRED"
)

// Validation error codes returned by Validate
const (
	CodeCouponInactive        = "COUPON_INACTIVE"
	CodeCouponNotStarted      = "COUPON_NOT_STARTED"
	CodeCouponExpired         = "COUPON_EXPIRED"
	CodeCouponNotApplicable   = "COUPON_NOT_APPLICABLE"
	CodeMinOrderNotMet        = "MIN_ORDER_NOT_MET"
	CodeUsageLimitReached     = "USAGE_LIMIT_REACHED"
	CodeUserUsageLimitReached = "USER_USAGE_LIMIT_REACHED"
	CodeFirstOrderOnly        = "FIRST_ORDER_ONLY"
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// Coupon is a discount code redeemable at checkout
type Coupon struct {
	shared.BaseAggregateRoot
	Code           string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Description    string          `gorm:"type:text"`
	DiscountType   DiscountType    `gorm:"type:varchar(20);not null"`
	Value          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MaxDiscount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MinOrderAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValidFrom      time.Time       `gorm:"not null"`
	ValidUntil     time.Time       `gorm:"not null;index"`
	UsageLimit     int             `gorm:"not null;default:0"`
	PerUserLimit   int             `gorm:"not null;default:0"`
	UsedCount      int             `gorm:"not null;default:0"`
	StoreID        *uuid.UUID      `gorm:"type:uuid;index"`
	FirstOrderOnly bool            `gorm:"not null;default:false"`
	Status         CouponStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (Coupon) TableName() string {
	return "coupons"
}

// Terms are the commercial parameters of a coupon
type Terms struct {
	DiscountType   DiscountType
	Value          decimal.Decimal
	MaxDiscount    decimal.Decimal
	MinOrderAmount decimal.Decimal
	ValidFrom      time.Time
	ValidUntil     time.Time
	UsageLimit     int
	PerUserLimit   int
	StoreID        *uuid.UUID
	FirstOrderOnly bool
}

// NewCoupon creates a new active coupon
func NewCoupon(code, description string, terms Terms) (*Coupon, error) {
	code = NormalizeCode(code)
	if !couponCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Coupon code must be 3-32 letters, digits, underscores or hyphens")
	}

	c := &Coupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Description:       strings.TrimSpace(description),
		Status:            CouponStatusActive,
	}
	if err := c.applyTerms(terms); err != nil {
		return nil, err
	}

	c.AddDomainEvent(NewCouponCreatedEvent(c))

	return c, nil
}

// NormalizeCode upper-cases and trims a user-entered code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// UpdateTerms replaces the commercial parameters.
// The usage limit cannot drop below what has already been redeemed.
func (c *Coupon) UpdateTerms(description string, terms Terms) error {
	if terms.UsageLimit > 0 && terms.UsageLimit < c.UsedCount {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Usage limit cannot be lower than the number of redemptions")
	}
	if err := c.applyTerms(terms); err != nil {
		return err
	}
	c.Description = strings.TrimSpace(description)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate re-enables a coupon
func (c *Coupon) Activate() error {
	if c.Status == CouponStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Coupon is already active")
	}
	if c.Status == CouponStatusExpired || time.Now().After(c.ValidUntil) {
		return shared.NewDomainError(CodeCouponExpired, "Cannot activate an expired coupon")
	}
	c.Status = CouponStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate disables a coupon
func (c *Coupon) Deactivate() error {
	if c.Status == CouponStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Coupon is already inactive")
	}
	c.Status = CouponStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Expire marks a coupon whose window has closed
func (c *Coupon) Expire(now time.Time) bool {
	if c.Status == CouponStatusExpired || !now.After(c.ValidUntil) {
		return false
	}
	c.Status = CouponStatusExpired
	c.UpdatedAt = now
	c.IncrementVersion()
	c.AddDomainEvent(NewCouponExpiredEvent(c))
	return true
}

// RemainingUses returns how many redemptions are left, or -1 if unlimited
func (c *Coupon) RemainingUses() int {
	if c.UsageLimit == 0 {
		return -1
	}
	if c.UsedCount >= c.UsageLimit {
		return 0
	}
	return c.UsageLimit - c.UsedCount
}

// ValidationContext carries the checkout facts a coupon is checked against
type ValidationContext struct {
	StoreID           uuid.UUID
	OrderAmount       decimal.Decimal
	UserUsageCount    int
	UserHasPriorOrder bool
	Now               time.Time
}

// Validate checks eligibility in a fixed order and returns the first failure.
func (c *Coupon) Validate(ctx ValidationContext) error {
	if c.Status != CouponStatusActive {
		if c.Status == CouponStatusExpired {
			return shared.NewDomainError(CodeCouponExpired, "This coupon has expired")
		}
		return shared.NewDomainError(CodeCouponInactive, "This coupon is not active")
	}
	if ctx.Now.Before(c.ValidFrom) {
		return shared.NewDomainError(CodeCouponNotStarted, "This coupon is not valid yet")
	}
	if ctx.Now.After(c.ValidUntil) {
		return shared.NewDomainError(CodeCouponExpired, "This coupon has expired")
	}
	if c.StoreID != nil && *c.StoreID != ctx.StoreID {
		return shared.NewDomainError(CodeCouponNotApplicable, "This coupon is not valid for this store")
	}
	if ctx.OrderAmount.LessThan(c.MinOrderAmount) {
		return shared.NewDomainError(CodeMinOrderNotMet, "Add items worth ₹"+c.MinOrderAmount.Sub(ctx.OrderAmount).StringFixed(2)+" more to use this coupon")
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return shared.NewDomainError(CodeUsageLimitReached, "This coupon has been fully redeemed")
	}
	if c.PerUserLimit > 0 && ctx.UserUsageCount >= c.PerUserLimit {
		return shared.NewDomainError(CodeUserUsageLimitReached, "You have already used this coupon")
	}
	if c.FirstOrderOnly && ctx.UserHasPriorOrder {
		return shared.NewDomainError(CodeFirstOrderOnly, "This coupon is valid on your first order only")
	}
	return nil
}

// CalculateDiscount prices the coupon against an order.
// The result never exceeds the subtotal (or the delivery fee for free-delivery coupons).
func (c *Coupon) CalculateDiscount(subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = valueobject.PercentOf(subtotal, c.Value)
		if c.MaxDiscount.IsPositive() {
			discount = valueobject.MinDecimal(discount, c.MaxDiscount)
		}
		discount = valueobject.MinDecimal(discount, subtotal)
	case DiscountTypeFixed:
		discount = valueobject.MinDecimal(c.Value, subtotal)
	case DiscountTypeFreeDelivery:
		discount = deliveryFee
	}
	discount = valueobject.MaxDecimal(discount, decimal.Zero)
	return valueobject.RoundMoney(discount)
}

// RecordRedemption counts a redemption in memory. Persistence must use a
// guarded update so concurrent checkouts cannot exceed the limit.
func (c *Coupon) RecordRedemption(userID, orderID uuid.UUID, discount decimal.Decimal) error {
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return shared.NewDomainError(CodeUsageLimitReached, "This coupon has been fully redeemed")
	}
	c.UsedCount++
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewCouponRedeemedEvent(c, userID, orderID, discount))
	return nil
}

func (c *Coupon) applyTerms(t Terms) error {
	if !t.DiscountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Invalid discount type")
	}
	switch t.DiscountType {
	case DiscountTypePercentage:
		if !t.Value.IsPositive() || t.Value.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewDomainError("INVALID_VALUE", "Percentage must be between 0 and 100")
		}
	case DiscountTypeFixed:
		if !t.Value.IsPositive() {
			return shared.NewDomainError("INVALID_VALUE", "Discount amount must be positive")
		}
	case DiscountTypeFreeDelivery:
		t.Value = decimal.Zero
	}
	if t.MaxDiscount.IsNegative() {
		return shared.NewDomainError("INVALID_MAX_DISCOUNT", "Maximum discount cannot be negative")
	}
	if t.MinOrderAmount.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order amount cannot be negative")
	}
	if t.ValidFrom.IsZero() || t.ValidUntil.IsZero() {
		return shared.NewDomainError("INVALID_VALIDITY", "Validity window is required")
	}
	if !t.ValidUntil.After(t.ValidFrom) {
		return shared.NewDomainError("INVALID_VALIDITY", "Coupon must end after it starts")
	}
	if t.UsageLimit < 0 || t.PerUserLimit < 0 {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Usage limits cannot be negative")
	}
	if t.UsageLimit > 0 && t.PerUserLimit > t.UsageLimit {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Per-user limit cannot exceed the total limit")
	}

	c.DiscountType = t.DiscountType
	c.Value = t.Value.Round(2)
	c.MaxDiscount = t.MaxDiscount.Round(2)
	c.MinOrderAmount = t.MinOrderAmount.Round(2)
	c.ValidFrom = t.ValidFrom
	c.ValidUntil = t.ValidUntil
	c.UsageLimit = t.UsageLimit
	c.PerUserLimit = t.PerUserLimit
	c.StoreID = t.StoreID
	c.FirstOrderOnly = t.FirstOrderOnly
	return nil
}
