package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/grocer/backend/internal/infrastructure/cache"
	"github.com/grocer/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RouteQuery is a delivery location to be routed to a service area
type RouteQuery struct {
	Pincode     string
	City        string
	Latitude    *float64
	Longitude   *float64
	OrderAmount *decimal.Decimal
	At          time.Time
}

// candidateSet is the cached lookup for one (pincode, city) pair: the active
// areas that could serve it and their stores. Routing itself is recomputed
// per request so amount, time and coordinates are always exact.
type candidateSet struct {
	Areas  []store.ServiceArea `json:"areas"`
	Stores []store.Store       `json:"stores"`
}

func (c *candidateSet) storeMap() map[uuid.UUID]*store.Store {
	m := make(map[uuid.UUID]*store.Store, len(c.Stores))
	for i := range c.Stores {
		m[c.Stores[i].ID] = &c.Stores[i]
	}
	return m
}

// ServiceabilityService answers whether and by which store a location can be served
type ServiceabilityService struct {
	storeRepo store.StoreRepository
	areaRepo  store.ServiceAreaRepository
	cache     cache.ServiceabilityCache
	router    *store.Router
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewServiceabilityService creates a service evaluating operating hours in location
func NewServiceabilityService(
	storeRepo store.StoreRepository,
	areaRepo store.ServiceAreaRepository,
	serviceability cache.ServiceabilityCache,
	location *time.Location,
	logger *zap.Logger,
) *ServiceabilityService {
	if location == nil {
		location = time.UTC
	}
	return &ServiceabilityService{
		storeRepo: storeRepo,
		areaRepo:  areaRepo,
		cache:     serviceability,
		router:    store.NewRouter(),
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// Check returns the serviceability answer for a location
func (s *ServiceabilityService) Check(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	q := RouteQuery{
		Pincode:     req.Pincode,
		City:        req.City,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		OrderAmount: req.OrderAmount,
	}
	if req.At != nil {
		q.At = *req.At
	}
	result, err := s.Route(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := ToAvailabilityResponse(result)
	return &resp, nil
}

// Route picks the service area that should fulfil a delivery
func (s *ServiceabilityService) Route(ctx context.Context, q RouteQuery) (store.RouteResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "serviceability", "Route")
	defer span.End()

	set, err := s.candidates(ctx, q.Pincode, q.City)
	if err != nil {
		telemetry.RecordError(span, err)
		return store.RouteResult{}, err
	}

	at := q.At
	if at.IsZero() {
		at = s.now()
	}
	point, _ := valueobject.NewGeoPoint(q.Latitude, q.Longitude)

	result := s.router.Route(store.RouteRequest{
		Pincode:     q.Pincode,
		City:        q.City,
		Location:    point,
		OrderAmount: q.OrderAmount,
		At:          at.In(s.location),
	}, set.Areas, set.storeMap())

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPincode, q.Pincode,
		"serviceable", result.Available,
	)
	if !result.Available {
		s.logger.Debug("Location not serviceable",
			zap.String("pincode", q.Pincode),
			zap.String("reason", string(result.Reason)),
		)
	}
	telemetry.SetOK(span)
	return result, nil
}

func (s *ServiceabilityService) candidates(ctx context.Context, pincode, city string) (*candidateSet, error) {
	city = strings.ToLower(strings.TrimSpace(city))
	key := "areas:" + pincode + ":" + city

	var set candidateSet
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &set)
		if err != nil {
			s.logger.Warn("Serviceability cache read failed", zap.Error(err))
		} else if hit {
			return &set, nil
		}
	}

	areas, err := s.areaRepo.FindActiveByPincode(ctx, pincode)
	if err != nil {
		return nil, err
	}
	if len(areas) == 0 && city != "" {
		areas, err = s.areaRepo.FindActiveByCity(ctx, city)
		if err != nil {
			return nil, err
		}
	}

	set = candidateSet{Areas: areas}
	if len(areas) > 0 {
		seen := make(map[uuid.UUID]struct{}, len(areas))
		ids := make([]uuid.UUID, 0, len(areas))
		for _, a := range areas {
			if _, ok := seen[a.StoreID]; !ok {
				seen[a.StoreID] = struct{}{}
				ids = append(ids, a.StoreID)
			}
		}
		set.Stores, err = s.storeRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, set); err != nil {
			s.logger.Warn("Serviceability cache write failed", zap.Error(err))
		}
	}
	return &set, nil
}
