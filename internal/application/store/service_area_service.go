package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/grocer/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// ServiceAreaService manages the delivery regions of stores
type ServiceAreaService struct {
	storeRepo store.StoreRepository
	areaRepo  store.ServiceAreaRepository
	cache     cache.ServiceabilityCache
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewServiceAreaService creates a new ServiceAreaService
func NewServiceAreaService(
	storeRepo store.StoreRepository,
	areaRepo store.ServiceAreaRepository,
	serviceability cache.ServiceabilityCache,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ServiceAreaService {
	return &ServiceAreaService{
		storeRepo: storeRepo,
		areaRepo:  areaRepo,
		cache:     serviceability,
		events:    events,
		logger:    logger,
	}
}

// Create adds a service area to a store
func (s *ServiceAreaService) Create(ctx context.Context, storeID uuid.UUID, req CreateServiceAreaRequest) (*ServiceAreaResponse, error) {
	if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
		return nil, err
	}
	area, err := store.NewServiceArea(storeID, req.Name, req.City, req.Pincodes, req.toDomain())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, area); err != nil {
		return nil, err
	}
	s.logger.Info("Service area created",
		zap.String("service_area_id", area.ID.String()),
		zap.String("store_id", storeID.String()),
		zap.Int("pincodes", len(area.Pincodes)),
	)
	resp := ToServiceAreaResponse(area)
	return &resp, nil
}

// GetByID returns a service area
func (s *ServiceAreaService) GetByID(ctx context.Context, id uuid.UUID) (*ServiceAreaResponse, error) {
	area, err := s.areaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToServiceAreaResponse(area)
	return &resp, nil
}

// List returns a page of service areas by store, city or pincode
func (s *ServiceAreaService) List(ctx context.Context, f ServiceAreaListFilter) (shared.Paginated[ServiceAreaResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  "priority",
		OrderDir: "asc",
	}.Normalize()
	if f.StoreID != nil {
		filter = filter.With("store_id", *f.StoreID)
	}
	if f.City != "" {
		filter = filter.With("city", f.City)
	}
	if f.Pincode != "" {
		filter = filter.With("pincode", f.Pincode)
	}
	if f.IsActive != nil {
		filter = filter.With("is_active", *f.IsActive)
	}

	areas, err := s.areaRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ServiceAreaResponse]{}, err
	}
	total, err := s.areaRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ServiceAreaResponse]{}, err
	}
	return shared.NewPaginated(ToServiceAreaResponses(areas), total, filter.Page, filter.PageSize), nil
}

// Update replaces a service area's pincodes and delivery settings
func (s *ServiceAreaService) Update(ctx context.Context, id uuid.UUID, req UpdateServiceAreaRequest) (*ServiceAreaResponse, error) {
	area, err := s.areaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := area.Update(req.Name, req.City, req.Pincodes, req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, area); err != nil {
		return nil, err
	}
	resp := ToServiceAreaResponse(area)
	return &resp, nil
}

// Activate re-enables routing through a service area
func (s *ServiceAreaService) Activate(ctx context.Context, id uuid.UUID) (*ServiceAreaResponse, error) {
	return s.transition(ctx, id, (*store.ServiceArea).Activate)
}

// Deactivate stops routing through a service area
func (s *ServiceAreaService) Deactivate(ctx context.Context, id uuid.UUID) (*ServiceAreaResponse, error) {
	return s.transition(ctx, id, (*store.ServiceArea).Deactivate)
}

// Delete removes a service area
func (s *ServiceAreaService) Delete(ctx context.Context, id uuid.UUID) error {
	area, err := s.areaRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.areaRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger)
	publish(ctx, s.events, s.logger, []shared.DomainEvent{
		store.NewServiceAreaChangedEvent(area, store.EventTypeServiceAreaDeleted),
	})
	s.logger.Info("Service area deleted", zap.String("service_area_id", id.String()))
	return nil
}

func (s *ServiceAreaService) transition(ctx context.Context, id uuid.UUID, apply func(*store.ServiceArea) error) (*ServiceAreaResponse, error) {
	area, err := s.areaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(area); err != nil {
		return nil, err
	}
	if err := s.save(ctx, area); err != nil {
		return nil, err
	}
	resp := ToServiceAreaResponse(area)
	return &resp, nil
}

func (s *ServiceAreaService) save(ctx context.Context, area *store.ServiceArea) error {
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger)
	publish(ctx, s.events, s.logger, area.PullDomainEvents())
	return nil
}
