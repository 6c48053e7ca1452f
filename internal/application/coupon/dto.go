package coupon

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/coupon"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest represents a request to create a coupon
type CreateCouponRequest struct {
	Code        string `json:"code" binding:"required,min=3,max=32"`
	Description string `json:"description" binding:"max=500"`
	TermsRequest
}

// UpdateCouponRequest replaces the description and terms of a coupon
type UpdateCouponRequest struct {
	Description string `json:"description" binding:"max=500"`
	TermsRequest
}

// TermsRequest carries the commercial parameters of a coupon
type TermsRequest struct {
	DiscountType   string          `json:"discount_type" binding:"required,oneof=PERCENTAGE FIXED FREE_DELIVERY"`
	Value          decimal.Decimal `json:"value"`
	MaxDiscount    decimal.Decimal `json:"max_discount"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	ValidFrom      time.Time       `json:"valid_from" binding:"required"`
	ValidUntil     time.Time       `json:"valid_until" binding:"required"`
	UsageLimit     int             `json:"usage_limit" binding:"min=0"`
	PerUserLimit   int             `json:"per_user_limit" binding:"min=0"`
	StoreID        *uuid.UUID      `json:"store_id"`
	FirstOrderOnly bool            `json:"first_order_only"`
}

func (r TermsRequest) toDomain() coupon.Terms {
	return coupon.Terms{
		DiscountType:   coupon.DiscountType(r.DiscountType),
		Value:          r.Value,
		MaxDiscount:    r.MaxDiscount,
		MinOrderAmount: r.MinOrderAmount,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
		UsageLimit:     r.UsageLimit,
		PerUserLimit:   r.PerUserLimit,
		StoreID:        r.StoreID,
		FirstOrderOnly: r.FirstOrderOnly,
	}
}

// CouponListFilter narrows coupon listings
type CouponListFilter struct {
	Search       string     `form:"search"`
	Status       string     `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE EXPIRED"`
	DiscountType string     `form:"discount_type" binding:"omitempty,oneof=PERCENTAGE FIXED FREE_DELIVERY"`
	StoreID      *uuid.UUID `form:"store_id"`
	GlobalOnly   bool       `form:"global"`
	ValidAt      *time.Time `form:"valid_at" time_format:"2006-01-02T15:04:05Z07:00"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UsageListFilter narrows a coupon's usage listing
type UsageListFilter struct {
	UserID   *uuid.UUID `form:"user_id"`
	Released *bool      `form:"released"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ValidateCouponRequest previews a coupon against a basket
type ValidateCouponRequest struct {
	Code        string          `json:"code" binding:"required"`
	StoreID     uuid.UUID       `json:"store_id" binding:"required"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
}

// ValidateCouponResponse is the outcome of a coupon preview.
// An ineligible coupon is a valid answer, not an error.
type ValidateCouponResponse struct {
	Valid    bool            `json:"valid"`
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Reason   string          `json:"reason,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// CouponResponse represents a coupon in API responses
type CouponResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Description    string          `json:"description,omitempty"`
	DiscountType   string          `json:"discount_type"`
	Value          decimal.Decimal `json:"value"`
	MaxDiscount    decimal.Decimal `json:"max_discount"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	ValidFrom      time.Time       `json:"valid_from"`
	ValidUntil     time.Time       `json:"valid_until"`
	UsageLimit     int             `json:"usage_limit"`
	PerUserLimit   int             `json:"per_user_limit"`
	UsedCount      int             `json:"used_count"`
	RemainingUses  int             `json:"remaining_uses"`
	StoreID        *uuid.UUID      `json:"store_id,omitempty"`
	FirstOrderOnly bool            `json:"first_order_only"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// UsageResponse represents one redemption
type UsageResponse struct {
	ID         uuid.UUID       `json:"id"`
	CouponID   uuid.UUID       `json:"coupon_id"`
	UserID     uuid.UUID       `json:"user_id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Discount   decimal.Decimal `json:"discount"`
	ReleasedAt *time.Time      `json:"released_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToCouponResponse converts a domain coupon to a response DTO
func ToCouponResponse(c *coupon.Coupon) CouponResponse {
	return CouponResponse{
		ID:             c.ID,
		Code:           c.Code,
		Description:    c.Description,
		DiscountType:   string(c.DiscountType),
		Value:          c.Value,
		MaxDiscount:    c.MaxDiscount,
		MinOrderAmount: c.MinOrderAmount,
		ValidFrom:      c.ValidFrom,
		ValidUntil:     c.ValidUntil,
		UsageLimit:     c.UsageLimit,
		PerUserLimit:   c.PerUserLimit,
		UsedCount:      c.UsedCount,
		RemainingUses:  c.RemainingUses(),
		StoreID:        c.StoreID,
		FirstOrderOnly: c.FirstOrderOnly,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToCouponResponses converts a slice of coupons
func ToCouponResponses(coupons []coupon.Coupon) []CouponResponse {
	out := make([]CouponResponse, len(coupons))
	for i := range coupons {
		out[i] = ToCouponResponse(&coupons[i])
	}
	return out
}

// ToUsageResponses converts usage records
func ToUsageResponses(usages []coupon.Usage) []UsageResponse {
	out := make([]UsageResponse, len(usages))
	for i, u := range usages {
		out[i] = UsageResponse{
			ID:         u.ID,
			CouponID:   u.CouponID,
			UserID:     u.UserID,
			OrderID:    u.OrderID,
			Discount:   u.Discount,
			ReleasedAt: u.ReleasedAt,
			CreatedAt:  u.CreatedAt,
		}
	}
	return out
}
