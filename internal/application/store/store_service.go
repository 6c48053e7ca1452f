package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/grocer/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// StoreService handles store administration
type StoreService struct {
	storeRepo store.StoreRepository
	areaRepo  store.ServiceAreaRepository
	cache     cache.ServiceabilityCache
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewStoreService creates a new StoreService
func NewStoreService(
	storeRepo store.StoreRepository,
	areaRepo store.ServiceAreaRepository,
	serviceability cache.ServiceabilityCache,
	events shared.EventPublisher,
	logger *zap.Logger,
) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		areaRepo:  areaRepo,
		cache:     serviceability,
		events:    events,
		logger:    logger,
	}
}

// Create creates a new store
func (s *StoreService) Create(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	exists, err := s.storeRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Store with this code already exists")
	}

	storeType := store.StoreTypeBrand
	if req.Type != "" {
		storeType = store.StoreType(req.Type)
	}
	st, err := store.NewStore(req.Code, req.Name, storeType)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" || req.Email != "" {
		if err := st.Update(req.Name, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if err := st.SetLocation(req.Address, req.City, req.State, req.StateCode, req.Pincode, req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if err := st.SetGSTIN(req.GSTIN); err != nil {
		return nil, err
	}

	if err := s.storeRepo.Save(ctx, st); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, st.PullDomainEvents())

	s.logger.Info("Store created", zap.String("store_id", st.ID.String()), zap.String("code", st.Code))
	resp := ToStoreResponse(st)
	return &resp, nil
}

// GetByID returns a store
func (s *StoreService) GetByID(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(st)
	return &resp, nil
}

// GetByCode returns a store by its code
func (s *StoreService) GetByCode(ctx context.Context, code string) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(st)
	return &resp, nil
}

// List returns a page of stores
func (s *StoreService) List(ctx context.Context, f StoreListFilter) (shared.Paginated[StoreResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
	}.Normalize()
	if f.City != "" {
		filter = filter.With("city", f.City)
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}
	if f.Type != "" {
		filter = filter.With("type", f.Type)
	}

	stores, err := s.storeRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[StoreResponse]{}, err
	}
	total, err := s.storeRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[StoreResponse]{}, err
	}
	return shared.NewPaginated(ToStoreResponses(stores), total, filter.Page, filter.PageSize), nil
}

// Update replaces contact, address and GST details
func (s *StoreService) Update(ctx context.Context, id uuid.UUID, req UpdateStoreRequest) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := st.Update(req.Name, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := st.SetLocation(req.Address, req.City, req.State, req.StateCode, req.Pincode, req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if err := st.SetGSTIN(req.GSTIN); err != nil {
		return nil, err
	}
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	resp := ToStoreResponse(st)
	return &resp, nil
}

// Activate makes the store routable
func (s *StoreService) Activate(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	return s.transition(ctx, id, (*store.Store).Activate)
}

// Deactivate takes the store out of routing
func (s *StoreService) Deactivate(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	return s.transition(ctx, id, (*store.Store).Deactivate)
}

// Suspend blocks the store administratively
func (s *StoreService) Suspend(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	return s.transition(ctx, id, (*store.Store).Suspend)
}

// Delete removes a store that no longer has service areas
func (s *StoreService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.storeRepo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.areaRepo.CountByStore(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return shared.NewDomainError("STORE_HAS_SERVICE_AREAS", "Delete the store's service areas first")
	}
	if err := s.storeRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Store deleted", zap.String("store_id", id.String()))
	return nil
}

func (s *StoreService) transition(ctx context.Context, id uuid.UUID, apply func(*store.Store) error) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(st); err != nil {
		return nil, err
	}
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("Store status changed", zap.String("store_id", st.ID.String()), zap.String("status", string(st.Status)))
	resp := ToStoreResponse(st)
	return &resp, nil
}

// save persists the store and drops cached routing data, which embeds store status and location
func (s *StoreService) save(ctx context.Context, st *store.Store) error {
	if err := s.storeRepo.Save(ctx, st); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger)
	publish(ctx, s.events, s.logger, st.PullDomainEvents())
	return nil
}

func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, pending []shared.DomainEvent) {
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Error("Failed to publish domain events", zap.Error(err))
	}
}

func invalidate(ctx context.Context, c cache.ServiceabilityCache, logger *zap.Logger) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logger.Error("Failed to invalidate serviceability cache", zap.Error(err))
	}
}
