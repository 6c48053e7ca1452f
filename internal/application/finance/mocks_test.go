package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/finance"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCreditNoteRepository is a mock implementation of finance.CreditNoteRepository
type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CreditNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.CreditNote, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditNoteRepository) SumActiveByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, cn *finance.CreditNote) error {
	args := m.Called(ctx, cn)
	return args.Error(0)
}

// MockGSTLedgerRepository is a mock implementation of finance.GSTLedgerRepository
type MockGSTLedgerRepository struct {
	mock.Mock
}

func (m *MockGSTLedgerRepository) Append(ctx context.Context, entries []finance.GSTLedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockGSTLedgerRepository) ExistsForSource(ctx context.Context, sourceType finance.LedgerSourceType, sourceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, sourceType, sourceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGSTLedgerRepository) FindByStoreAndPeriod(ctx context.Context, storeID uuid.UUID, period string) ([]finance.GSTLedgerEntry, error) {
	args := m.Called(ctx, storeID, period)
	return args.Get(0).([]finance.GSTLedgerEntry), args.Error(1)
}

func (m *MockGSTLedgerRepository) FindUnpostedSales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, storeID, from, to)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockGSTLedgerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.GSTLedgerEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.GSTLedgerEntry), args.Error(1)
}

func (m *MockGSTLedgerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockGSTSummaryRepository is a mock implementation of finance.GSTSummaryRepository
type MockGSTSummaryRepository struct {
	mock.Mock
}

func (m *MockGSTSummaryRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.GSTSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.GSTSummary), args.Error(1)
}

func (m *MockGSTSummaryRepository) FindByStoreAndPeriod(ctx context.Context, storeID uuid.UUID, period string) (*finance.GSTSummary, error) {
	args := m.Called(ctx, storeID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.GSTSummary), args.Error(1)
}

func (m *MockGSTSummaryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.GSTSummary, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.GSTSummary), args.Error(1)
}

func (m *MockGSTSummaryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGSTSummaryRepository) Save(ctx context.Context, s *finance.GSTSummary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

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
