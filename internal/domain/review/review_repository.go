package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Review, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCustomerAndProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	// RatingCounts returns approved review counts keyed by star rating
	RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int64, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}
