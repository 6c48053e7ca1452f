package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// StoreRepository defines the interface for store persistence
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindByCode(ctx context.Context, code string) (*Store, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Store, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Store, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, store *Store) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceAreaRepository defines the interface for service area persistence
type ServiceAreaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceArea, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ServiceArea, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindActiveByPincode returns active areas that list the pincode
	FindActiveByPincode(ctx context.Context, pincode string) ([]ServiceArea, error)
	// FindActiveByCity returns active areas in the city (case-insensitive)
	FindActiveByCity(ctx context.Context, city string) ([]ServiceArea, error)
	CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error)
	Save(ctx context.Context, area *ServiceArea) error
	Delete(ctx context.Context, id uuid.UUID) error
}
