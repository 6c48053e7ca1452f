package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/grocer/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/mock"
)

// MockStoreRepository is a mock implementation of store.StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByCode(ctx context.Context, code string) (*store.Store, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]store.Store, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]store.Store), args.Error(1)
}

func (m *MockStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]store.Store, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]store.Store), args.Error(1)
}

func (m *MockStoreRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockStoreRepository) Save(ctx context.Context, s *store.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockServiceAreaRepository is a mock implementation of store.ServiceAreaRepository
type MockServiceAreaRepository struct {
	mock.Mock
}

func (m *MockServiceAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.ServiceArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ServiceArea), args.Error(1)
}

func (m *MockServiceAreaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]store.ServiceArea, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]store.ServiceArea), args.Error(1)
}

func (m *MockServiceAreaRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceAreaRepository) FindActiveByPincode(ctx context.Context, pincode string) ([]store.ServiceArea, error) {
	args := m.Called(ctx, pincode)
	return args.Get(0).([]store.ServiceArea), args.Error(1)
}

func (m *MockServiceAreaRepository) FindActiveByCity(ctx context.Context, city string) ([]store.ServiceArea, error) {
	args := m.Called(ctx, city)
	return args.Get(0).([]store.ServiceArea), args.Error(1)
}

func (m *MockServiceAreaRepository) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceAreaRepository) Save(ctx context.Context, area *store.ServiceArea) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

func (m *MockServiceAreaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// countingCache wraps the in-memory cache and counts invalidations
type countingCache struct {
	inner         cache.ServiceabilityCache
	invalidations int
}

func (c *countingCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return c.inner.Get(ctx, key, dest)
}

func (c *countingCache) Set(ctx context.Context, key string, value any) error {
	return c.inner.Set(ctx, key, value)
}

func (c *countingCache) Invalidate(ctx context.Context) error {
	c.invalidations++
	return c.inner.Invalidate(ctx)
}
