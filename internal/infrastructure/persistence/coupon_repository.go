package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/coupon"
	"github.com/grocer/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCouponRepository implements coupon.CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByID finds a coupon by ID
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := conn(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	c.MarkStored()
	return &c, nil
}

// FindByCode finds a coupon by its normalized code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := conn(ctx, r.db).
		Where("code = ?", coupon.NormalizeCode(code)).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	c.MarkStored()
	return &c, nil
}

// FindAll lists coupons matching the filter
func (r *GormCouponRepository) FindAll(ctx context.Context, filter shared.Filter) ([]coupon.Coupon, error) {
	var coupons []coupon.Coupon
	query := r.applyFilter(conn(ctx, r.db).Model(&coupon.Coupon{}), filter)
	query = paginate(query, filter, CouponSortFields, "created_at DESC")
	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	markStored(coupons)
	return coupons, nil
}

// Count counts coupons matching the filter
func (r *GormCouponRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&coupon.Coupon{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a coupon code is taken
func (r *GormCouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&coupon.Coupon{}).
		Where("code = ?", coupon.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindExpirable returns non-expired coupons whose validity ended before now
func (r *GormCouponRepository) FindExpirable(ctx context.Context, now time.Time, limit int) ([]coupon.Coupon, error) {
	var coupons []coupon.Coupon
	if err := conn(ctx, r.db).
		Where("status <> ? AND valid_until < ?", coupon.CouponStatusExpired, now).
		Order("valid_until ASC").
		Limit(limit).
		Find(&coupons).Error; err != nil {
		return nil, err
	}
	markStored(coupons)
	return coupons, nil
}

// Save creates or updates a coupon, rejecting stale copies.
// used_count is owned by Redeem and Release and is never overwritten here.
func (r *GormCouponRepository) Save(ctx context.Context, c *coupon.Coupon) error {
	return saveVersioned(conn(ctx, r.db), c, "used_count")
}

// Delete deletes a coupon
func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&coupon.Coupon{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Redeem records a usage. The used_count increment is guarded in SQL so
// concurrent checkouts cannot push a coupon past its usage limit.
func (r *GormCouponRepository) Redeem(ctx context.Context, usage *coupon.Usage) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&coupon.Coupon{}).
			Where("id = ? AND status = ? AND (usage_limit = 0 OR used_count < usage_limit)",
				usage.CouponID, coupon.CouponStatusActive).
			Updates(map[string]interface{}{
				"used_count": gorm.Expr("used_count + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(coupon.CodeUsageLimitReached, "This coupon has been fully redeemed")
		}

		var perUserLimit int
		if err := tx.Model(&coupon.Coupon{}).
			Where("id = ?", usage.CouponID).
			Select("per_user_limit").
			Scan(&perUserLimit).Error; err != nil {
			return err
		}
		if perUserLimit > 0 {
			var used int64
			if err := tx.Model(&coupon.Usage{}).
				Where("coupon_id = ? AND user_id = ? AND released_at IS NULL", usage.CouponID, usage.UserID).
				Count(&used).Error; err != nil {
				return err
			}
			if used >= int64(perUserLimit) {
				return shared.NewDomainError(coupon.CodeUserUsageLimitReached, "You have already used this coupon")
			}
		}

		return tx.Create(usage).Error
	})
}

// Release gives back the usage recorded for an order
func (r *GormCouponRepository) Release(ctx context.Context, orderID uuid.UUID) (*coupon.Usage, error) {
	var usage coupon.Usage
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ? AND released_at IS NULL", orderID).First(&usage).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		now := time.Now()
		usage.ReleasedAt = &now
		if err := tx.Model(&usage).Update("released_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&coupon.Coupon{}).
			Where("id = ? AND used_count > 0", usage.CouponID).
			Updates(map[string]interface{}{
				"used_count": gorm.Expr("used_count - 1"),
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// CountUserUsages counts unreleased usages of a coupon by one user
func (r *GormCouponRepository) CountUserUsages(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&coupon.Usage{}).
		Where("coupon_id = ? AND user_id = ? AND released_at IS NULL", couponID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindUsages pages through a coupon's usage history
func (r *GormCouponRepository) FindUsages(ctx context.Context, couponID uuid.UUID, filter shared.Filter) ([]coupon.Usage, int64, error) {
	base := conn(ctx, r.db).Model(&coupon.Usage{}).Where("coupon_id = ?", couponID)
	if v, ok := filter.Filters["user_id"]; ok {
		base = base.Where("user_id = ?", v)
	}
	if v, ok := filter.Filters["released"]; ok {
		if v == true {
			base = base.Where("released_at IS NOT NULL")
		} else {
			base = base.Where("released_at IS NULL")
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var usages []coupon.Usage
	if err := paginate(base, filter, CouponUsageSortFields, "created_at DESC").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

func (r *GormCouponRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(code) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "discount_type":
			query = query.Where("discount_type = ?", value)
		case "store_id":
			query = query.Where("store_id = ?", value)
		case "global":
			if value == true {
				query = query.Where("store_id IS NULL")
			}
		case "valid_at":
			query = query.Where("valid_from <= ? AND valid_until >= ?", value, value)
		}
	}
	return query
}
