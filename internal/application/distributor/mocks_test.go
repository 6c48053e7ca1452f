package distributor

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/distributor"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockDistributorRepository is a mock implementation of distributor.DistributorRepository
type MockDistributorRepository struct {
	mock.Mock
}

func (m *MockDistributorRepository) FindByID(ctx context.Context, id uuid.UUID) (*distributor.Distributor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distributor.Distributor), args.Error(1)
}

func (m *MockDistributorRepository) FindByEmail(ctx context.Context, email string) (*distributor.Distributor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distributor.Distributor), args.Error(1)
}

func (m *MockDistributorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]distributor.Distributor, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]distributor.Distributor), args.Error(1)
}

func (m *MockDistributorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDistributorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockDistributorRepository) Save(ctx context.Context, d *distributor.Distributor) error {
	args := m.Called(ctx, d)
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
