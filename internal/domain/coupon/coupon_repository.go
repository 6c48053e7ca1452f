package coupon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// CouponRepository defines the interface for coupon persistence
type CouponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Coupon, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// FindExpirable returns active coupons whose validity ended before now
	FindExpirable(ctx context.Context, now time.Time, limit int) ([]Coupon, error)
	Save(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Redeem increments used_count only while it is below usage_limit and
	// writes the usage row, atomically. Returns USAGE_LIMIT_REACHED when the
	// guarded update matches no row.
	Redeem(ctx context.Context, usage *Usage) error
	// Release marks the order's usage released and decrements used_count.
	// It is a no-op when the order has no unreleased usage.
	Release(ctx context.Context, orderID uuid.UUID) (*Usage, error)
	CountUserUsages(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
	FindUsages(ctx context.Context, couponID uuid.UUID, filter shared.Filter) ([]Usage, int64, error)
}
