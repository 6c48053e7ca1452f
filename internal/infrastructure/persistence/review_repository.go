package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/review"
	"github.com/grocer/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var rv review.Review
	if err := conn(ctx, r.db).First(&rv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// FindAll lists reviews matching the filter
func (r *GormReviewRepository) FindAll(ctx context.Context, filter shared.Filter) ([]review.Review, error) {
	var reviews []review.Review
	query := r.applyFilter(conn(ctx, r.db).Model(&review.Review{}), filter)
	query = paginate(query, filter, ReviewSortFields, "created_at DESC")
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// Count counts reviews matching the filter
func (r *GormReviewRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&review.Review{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCustomerAndProduct checks whether the customer already reviewed the product
func (r *GormReviewRepository) ExistsByCustomerAndProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&review.Review{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RatingCounts returns approved review counts keyed by star rating
func (r *GormReviewRepository) RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Total  int64
	}
	if err := conn(ctx, r.db).
		Model(&review.Review{}).
		Select("rating, COUNT(*) AS total").
		Where("product_id = ? AND status = ?", productID, review.ReviewStatusApproved).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Total
	}
	return counts, nil
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	return conn(ctx, r.db).Save(rv).Error
}

// Delete deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&review.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormReviewRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(comment) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "store_id":
			query = query.Where("store_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "rating":
			query = query.Where("rating = ?", value)
		case "verified":
			query = query.Where("verified_purchase = ?", value)
		}
	}
	return query
}
