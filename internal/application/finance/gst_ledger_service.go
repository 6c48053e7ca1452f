package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/finance"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"go.uber.org/zap"
)

// GSTLedgerService posts taxable documents to the GST ledger
type GSTLedgerService struct {
	ledgerRepo finance.GSTLedgerRepository
	storeRepo  store.StoreRepository
	orderRepo  order.OrderRepository
	location   *time.Location
	logger     *zap.Logger
}

// NewGSTLedgerService creates a new GSTLedgerService. Periods are cut in loc.
func NewGSTLedgerService(
	ledgerRepo finance.GSTLedgerRepository,
	storeRepo store.StoreRepository,
	orderRepo order.OrderRepository,
	loc *time.Location,
	logger *zap.Logger,
) *GSTLedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &GSTLedgerService{
		ledgerRepo: ledgerRepo,
		storeRepo:  storeRepo,
		orderRepo:  orderRepo,
		location:   loc,
		logger:     logger,
	}
}

// RecordSale posts a delivered order. Posting the same order twice is a no-op.
func (s *GSTLedgerService) RecordSale(ctx context.Context, o *order.Order) error {
	if o.Status != order.OrderStatusDelivered {
		return shared.NewDomainError("ORDER_NOT_DELIVERED", "Only delivered orders are posted to the GST ledger")
	}
	exists, err := s.ledgerRepo.ExistsForSource(ctx, finance.LedgerSourceSale, o.ID)
	if err != nil {
		return fmt.Errorf("failed to check ledger for order: %w", err)
	}
	if exists {
		s.logger.Debug("sale already in GST ledger, skipping", zap.String("order_id", o.ID.String()))
		return nil
	}

	st, err := s.storeRepo.FindByID(ctx, o.StoreID)
	if err != nil {
		return err
	}
	entries := finance.BuildSaleEntries(o, st.StateCode, s.location)
	if len(entries) == 0 {
		return nil
	}
	if err := s.ledgerRepo.Append(ctx, entries); err != nil {
		return fmt.Errorf("failed to append sale ledger entries: %w", err)
	}

	s.logger.Info("sale posted to GST ledger",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("period", entries[0].Period),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// PostMissingSales posts every delivered order of a store and period that
// has no sale entries yet. Returns how many orders were posted.
func (s *GSTLedgerService) PostMissingSales(ctx context.Context, storeID uuid.UUID, period string) (int, error) {
	from, err := time.ParseInLocation("2006-01", period, s.location)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
	}
	ids, err := s.ledgerRepo.FindUnpostedSales(ctx, storeID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return 0, fmt.Errorf("failed to find unposted sales: %w", err)
	}

	posted := 0
	for _, id := range ids {
		o, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return posted, err
		}
		if err := s.RecordSale(ctx, o); err != nil {
			return posted, err
		}
		posted++
	}
	if posted > 0 {
		s.logger.Warn("delivered orders were missing from the GST ledger",
			zap.String("store_id", storeID.String()),
			zap.String("period", period),
			zap.Int("posted", posted),
		)
	}
	return posted, nil
}

// RecordCreditNote posts the tax reversal of an applied credit note
func (s *GSTLedgerService) RecordCreditNote(ctx context.Context, cn *finance.CreditNote, o *order.Order) error {
	if cn.Status != finance.CreditNoteStatusApplied {
		return shared.NewDomainError("INVALID_STATE", "Only applied credit notes are posted to the GST ledger")
	}
	exists, err := s.ledgerRepo.ExistsForSource(ctx, finance.LedgerSourceCreditNote, cn.ID)
	if err != nil {
		return fmt.Errorf("failed to check ledger for credit note: %w", err)
	}
	if exists {
		return nil
	}

	st, err := s.storeRepo.FindByID(ctx, cn.StoreID)
	if err != nil {
		return err
	}
	entries := finance.BuildCreditNoteEntries(cn, o, st.StateCode, s.location)
	if len(entries) == 0 {
		return nil
	}
	if err := s.ledgerRepo.Append(ctx, entries); err != nil {
		return fmt.Errorf("failed to append credit note ledger entries: %w", err)
	}

	s.logger.Info("credit note posted to GST ledger",
		zap.String("credit_note_id", cn.ID.String()),
		zap.String("note_number", cn.NoteNumber),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// List lists ledger entries, scoped to the caller's store when set
func (s *GSTLedgerService) List(ctx context.Context, scope Scope, f LedgerListFilter) (shared.Paginated[LedgerEntryResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "transaction_date",
		OrderDir: "desc",
	}.Normalize()

	switch {
	case scope.StoreID != nil:
		filter = filter.With("store_id", *scope.StoreID)
	case f.StoreID != nil:
		filter = filter.With("store_id", *f.StoreID)
	}
	if f.Period != "" {
		if !finance.ValidatePeriod(f.Period) {
			return shared.Paginated[LedgerEntryResponse]{}, shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
		}
		filter = filter.With("period", f.Period)
	}
	if f.SourceType != "" {
		filter = filter.With("source_type", f.SourceType)
	}

	entries, err := s.ledgerRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[LedgerEntryResponse]{}, err
	}
	total, err := s.ledgerRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[LedgerEntryResponse]{}, err
	}
	return shared.NewPaginated(ToLedgerEntryResponses(entries), total, filter.Page, filter.PageSize), nil
}
