package distributor

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// DistributorRepository defines the interface for distributor persistence.
// Documents are loaded and saved with their distributor.
type DistributorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Distributor, error)
	FindByEmail(ctx context.Context, email string) (*Distributor, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Distributor, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, distributor *Distributor) error
}
