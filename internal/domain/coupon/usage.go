package coupon

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Usage records one redemption of a coupon against an order.
// Released usages belong to cancelled orders and no longer count toward limits.
type Usage struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CouponID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_coupon_usage_user,priority:1"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_coupon_usage_user,priority:2"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReleasedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Usage) TableName() string {
	return "coupon_usages"
}

// NewUsage creates a usage record
func NewUsage(couponID, userID, orderID uuid.UUID, discount decimal.Decimal) *Usage {
	return &Usage{
		ID:        uuid.New(),
		CouponID:  couponID,
		UserID:    userID,
		OrderID:   orderID,
		Discount:  discount,
		CreatedAt: time.Now(),
	}
}

// IsReleased reports whether the usage was given back
func (u *Usage) IsReleased() bool {
	return u.ReleasedAt != nil
}
