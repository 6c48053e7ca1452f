package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/finance"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCreditNoteRepository implements finance.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID finds a credit note by ID
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CreditNote, error) {
	var cn finance.CreditNote
	if err := conn(ctx, r.db).First(&cn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	cn.MarkStored()
	return &cn, nil
}

// FindAll lists credit notes matching the filter
func (r *GormCreditNoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.CreditNote, error) {
	var notes []finance.CreditNote
	query := r.applyFilter(conn(ctx, r.db).Model(&finance.CreditNote{}), filter)
	query = paginate(query, filter, CreditNoteSortFields, "created_at DESC")
	if err := query.Find(&notes).Error; err != nil {
		return nil, err
	}
	markStored(notes)
	return notes, nil
}

// Count counts credit notes matching the filter
func (r *GormCreditNoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&finance.CreditNote{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumActiveByOrder totals the non-cancelled credit notes raised against an order
func (r *GormCreditNoteRepository) SumActiveByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := conn(ctx, r.db).
		Model(&finance.CreditNote{}).
		Select("SUM(amount)").
		Where("order_id = ? AND status <> ?", orderID, finance.CreditNoteStatusCancelled).
		Row().
		Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Save creates or updates a credit note, rejecting stale copies
func (r *GormCreditNoteRepository) Save(ctx context.Context, cn *finance.CreditNote) error {
	return saveVersioned(conn(ctx, r.db), cn)
}

func (r *GormCreditNoteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(note_number) LIKE ? OR LOWER(order_number) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "store_id":
			query = query.Where("store_id = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
			}
		}
	}
	return query
}

// GormGSTLedgerRepository implements finance.GSTLedgerRepository using GORM.
// The ledger is append-only.
type GormGSTLedgerRepository struct {
	db *gorm.DB
}

// NewGormGSTLedgerRepository creates a new GormGSTLedgerRepository
func NewGormGSTLedgerRepository(db *gorm.DB) *GormGSTLedgerRepository {
	return &GormGSTLedgerRepository{db: db}
}

// Append inserts entries, silently skipping any (source, rate) already posted
func (r *GormGSTLedgerRepository) Append(ctx context.Context, entries []finance.GSTLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_type"}, {Name: "source_id"}, {Name: "gst_rate"}},
			DoNothing: true,
		}).
		Create(&entries).Error
}

// ExistsForSource reports whether any entry was posted for the source document
func (r *GormGSTLedgerRepository) ExistsForSource(ctx context.Context, sourceType finance.LedgerSourceType, sourceID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&finance.GSTLedgerEntry{}).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByStoreAndPeriod returns every entry of a store's return period
func (r *GormGSTLedgerRepository) FindByStoreAndPeriod(ctx context.Context, storeID uuid.UUID, period string) ([]finance.GSTLedgerEntry, error) {
	var entries []finance.GSTLedgerEntry
	if err := conn(ctx, r.db).
		Where("store_id = ? AND period = ?", storeID, period).
		Order("transaction_date ASC, gst_rate ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindUnpostedSales finds delivered orders of a store that never reached the ledger
func (r *GormGSTLedgerRepository) FindUnpostedSales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := conn(ctx, r.db).
		Model(&order.Order{}).
		Where("store_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?",
			storeID, order.OrderStatusDelivered, from, to).
		Where("NOT EXISTS (SELECT 1 FROM gst_ledger_entries g WHERE g.source_type = ? AND g.source_id = orders.id)",
			finance.LedgerSourceSale).
		Order("delivered_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindAll lists ledger entries matching the filter
func (r *GormGSTLedgerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.GSTLedgerEntry, error) {
	var entries []finance.GSTLedgerEntry
	query := r.applyFilter(conn(ctx, r.db).Model(&finance.GSTLedgerEntry{}), filter)
	query = paginate(query, filter, GSTLedgerSortFields, "transaction_date DESC")
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts ledger entries matching the filter
func (r *GormGSTLedgerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&finance.GSTLedgerEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormGSTLedgerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(invoice_number) LIKE ?", likePattern(filter.Search))
	}

	for key, value := range filter.Filters {
		switch key {
		case "store_id":
			query = query.Where("store_id = ?", value)
		case "period":
			query = query.Where("period = ?", value)
		case "source_type":
			query = query.Where("source_type = ?", value)
		case "source_id":
			query = query.Where("source_id = ?", value)
		case "supply_type":
			query = query.Where("supply_type = ?", value)
		}
	}
	return query
}

// GormGSTSummaryRepository implements finance.GSTSummaryRepository using GORM
type GormGSTSummaryRepository struct {
	db *gorm.DB
}

// NewGormGSTSummaryRepository creates a new GormGSTSummaryRepository
func NewGormGSTSummaryRepository(db *gorm.DB) *GormGSTSummaryRepository {
	return &GormGSTSummaryRepository{db: db}
}

// FindByID finds a summary by ID
func (r *GormGSTSummaryRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.GSTSummary, error) {
	var s finance.GSTSummary
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	s.MarkStored()
	return &s, nil
}

// FindByStoreAndPeriod finds the summary of one store's period
func (r *GormGSTSummaryRepository) FindByStoreAndPeriod(ctx context.Context, storeID uuid.UUID, period string) (*finance.GSTSummary, error) {
	var s finance.GSTSummary
	if err := conn(ctx, r.db).
		Where("store_id = ? AND period = ?", storeID, period).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	s.MarkStored()
	return &s, nil
}

// FindAll lists summaries matching the filter
func (r *GormGSTSummaryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.GSTSummary, error) {
	var summaries []finance.GSTSummary
	query := r.applyFilter(conn(ctx, r.db).Model(&finance.GSTSummary{}), filter)
	query = paginate(query, filter, GSTSummarySortFields, "period DESC")
	if err := query.Find(&summaries).Error; err != nil {
		return nil, err
	}
	markStored(summaries)
	return summaries, nil
}

// Count counts summaries matching the filter
func (r *GormGSTSummaryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&finance.GSTSummary{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a summary, rejecting stale copies
func (r *GormGSTSummaryRepository) Save(ctx context.Context, s *finance.GSTSummary) error {
	return saveVersioned(conn(ctx, r.db), s)
}

func (r *GormGSTSummaryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "store_id":
			query = query.Where("store_id = ?", value)
		case "period":
			query = query.Where("period = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}
