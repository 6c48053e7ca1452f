package coupon

import (
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeCoupon is the aggregate type for coupons
const AggregateTypeCoupon = "Coupon"

// Event type constants for Coupon
const (
	EventTypeCouponCreated  = "CouponCreated"
	EventTypeCouponRedeemed = "CouponRedeemed"
	EventTypeCouponExpired  = "CouponExpired"
)

// CouponCreatedEvent is published when a coupon is created
type CouponCreatedEvent struct {
	shared.BaseDomainEvent
	CouponID     uuid.UUID    `json:"coupon_id"`
	Code         string       `json:"code"`
	DiscountType DiscountType `json:"discount_type"`
}

// NewCouponCreatedEvent creates a new CouponCreatedEvent
func NewCouponCreatedEvent(c *Coupon) *CouponCreatedEvent {
	return &CouponCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCouponCreated, AggregateTypeCoupon, c.ID),
		CouponID:        c.ID,
		Code:            c.Code,
		DiscountType:    c.DiscountType,
	}
}

// CouponRedeemedEvent is published when a coupon is used on an order
type CouponRedeemedEvent struct {
	shared.BaseDomainEvent
	CouponID  uuid.UUID       `json:"coupon_id"`
	Code      string          `json:"code"`
	UserID    uuid.UUID       `json:"user_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Discount  decimal.Decimal `json:"discount"`
	UsedCount int             `json:"used_count"`
}

// NewCouponRedeemedEvent creates a new CouponRedeemedEvent
func NewCouponRedeemedEvent(c *Coupon, userID, orderID uuid.UUID, discount decimal.Decimal) *CouponRedeemedEvent {
	return &CouponRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCouponRedeemed, AggregateTypeCoupon, c.ID),
		CouponID:        c.ID,
		Code:            c.Code,
		UserID:          userID,
		OrderID:         orderID,
		Discount:        discount,
		UsedCount:       c.UsedCount,
	}
}

// CouponExpiredEvent is published when the expiry job closes a coupon
type CouponExpiredEvent struct {
	shared.BaseDomainEvent
	CouponID uuid.UUID `json:"coupon_id"`
	Code     string    `json:"code"`
}

// NewCouponExpiredEvent creates a new CouponExpiredEvent
func NewCouponExpiredEvent(c *Coupon) *CouponExpiredEvent {
	return &CouponExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCouponExpired, AggregateTypeCoupon, c.ID),
		CouponID:        c.ID,
		Code:            c.Code,
	}
}
