package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditNoteRepository defines the interface for credit note persistence
type CreditNoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]CreditNote, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// SumActiveByOrder totals the non-cancelled notes against an order
	SumActiveByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, note *CreditNote) error
}

// GSTLedgerRepository defines the interface for GST ledger persistence
type GSTLedgerRepository interface {
	// Append inserts entries, skipping any whose (source type, source ID, rate) already exists
	Append(ctx context.Context, entries []GSTLedgerEntry) error
	ExistsForSource(ctx context.Context, sourceType LedgerSourceType, sourceID uuid.UUID) (bool, error)
	FindByStoreAndPeriod(ctx context.Context, storeID uuid.UUID, period string) ([]GSTLedgerEntry, error)
	// FindUnpostedSales returns the IDs of a store's orders delivered in
	// [from, to) that have no sale entries
	FindUnpostedSales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]uuid.UUID, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]GSTLedgerEntry, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// GSTSummaryRepository defines the interface for GST summary persistence
type GSTSummaryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GSTSummary, error)
	FindByStoreAndPeriod(ctx context.Context, storeID uuid.UUID, period string) (*GSTSummary, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]GSTSummary, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, summary *GSTSummary) error
}
