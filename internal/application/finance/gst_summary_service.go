package finance

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/finance"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"go.uber.org/zap"
)

// MonthlyRunResult reports a GenerateMonthly pass
type MonthlyRunResult struct {
	Period    string `json:"period"`
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// GSTSummaryService aggregates the GST ledger into per-store period summaries
type GSTSummaryService struct {
	summaryRepo  finance.GSTSummaryRepository
	ledgerRepo   finance.GSTLedgerRepository
	ledger       *GSTLedgerService
	storeRepo    store.StoreRepository
	events       shared.EventPublisher
	location     *time.Location
	retryDelay   time.Duration
	retryAttempt uint
	logger       *zap.Logger
}

// NewGSTSummaryService creates a new GSTSummaryService. When ledger is set,
// generation first posts delivered orders the ledger is missing.
func NewGSTSummaryService(
	summaryRepo finance.GSTSummaryRepository,
	ledgerRepo finance.GSTLedgerRepository,
	ledger *GSTLedgerService,
	storeRepo store.StoreRepository,
	events shared.EventPublisher,
	loc *time.Location,
	logger *zap.Logger,
) *GSTSummaryService {
	if loc == nil {
		loc = time.UTC
	}
	return &GSTSummaryService{
		summaryRepo:  summaryRepo,
		ledgerRepo:   ledgerRepo,
		ledger:       ledger,
		storeRepo:    storeRepo,
		events:       events,
		location:     loc,
		retryDelay:   2 * time.Second,
		retryAttempt: 3,
		logger:       logger,
	}
}

// Generate (re)computes the DRAFT summary of a store for a period.
// A filed summary is never regenerated.
func (s *GSTSummaryService) Generate(ctx context.Context, scope Scope, req GenerateSummaryRequest) (*SummaryResponse, error) {
	if !scope.allows(req.StoreID) {
		return nil, shared.ErrNotFound
	}
	if !finance.ValidatePeriod(req.Period) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
	}
	if _, err := s.storeRepo.FindByID(ctx, req.StoreID); err != nil {
		return nil, err
	}
	summary, err := s.generate(ctx, req.StoreID, req.Period)
	if err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(summary)
	return &resp, nil
}

func (s *GSTSummaryService) generate(ctx context.Context, storeID uuid.UUID, period string) (*finance.GSTSummary, error) {
	summary, err := s.summaryRepo.FindByStoreAndPeriod(ctx, storeID, period)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		summary, err = finance.NewGSTSummary(storeID, period)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case summary.Status == finance.GSTSummaryStatusFiled:
		return nil, shared.NewDomainError("SUMMARY_FILED", "A filed GST summary cannot be regenerated")
	}

	if s.ledger != nil {
		if _, err := s.ledger.PostMissingSales(ctx, storeID, period); err != nil {
			return nil, err
		}
	}
	entries, err := s.ledgerRepo.FindByStoreAndPeriod(ctx, storeID, period)
	if err != nil {
		return nil, err
	}
	if err := summary.Recompute(entries); err != nil {
		return nil, err
	}
	if err := s.summaryRepo.Save(ctx, summary); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, summary.PullDomainEvents())

	s.logger.Info("GST summary generated",
		zap.String("store_id", storeID.String()),
		zap.String("period", period),
		zap.String("total_tax", summary.TotalTax.StringFixed(2)),
		zap.Int("sale_entries", summary.SaleEntries),
		zap.Int("credit_note_entries", summary.CreditNoteEntries),
	)
	return summary, nil
}

// File locks a summary against further regeneration
func (s *GSTSummaryService) File(ctx context.Context, scope Scope, id uuid.UUID) (*SummaryResponse, error) {
	summary, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := summary.File(scope.UserID); err != nil {
		return nil, err
	}
	if err := s.summaryRepo.Save(ctx, summary); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, summary.PullDomainEvents())

	s.logger.Info("GST summary filed",
		zap.String("summary_id", summary.ID.String()),
		zap.String("period", summary.Period),
	)
	resp := ToSummaryResponse(summary)
	return &resp, nil
}

// GetByID returns a summary
func (s *GSTSummaryService) GetByID(ctx context.Context, scope Scope, id uuid.UUID) (*SummaryResponse, error) {
	summary, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(summary)
	return &resp, nil
}

// List lists summaries, latest period first
func (s *GSTSummaryService) List(ctx context.Context, scope Scope, f SummaryListFilter) (shared.Paginated[SummaryResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "period",
		OrderDir: "desc",
	}.Normalize()

	switch {
	case scope.StoreID != nil:
		filter = filter.With("store_id", *scope.StoreID)
	case f.StoreID != nil:
		filter = filter.With("store_id", *f.StoreID)
	}
	if f.Period != "" {
		filter = filter.With("period", f.Period)
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}

	summaries, err := s.summaryRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[SummaryResponse]{}, err
	}
	total, err := s.summaryRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[SummaryResponse]{}, err
	}
	return shared.NewPaginated(ToSummaryResponses(summaries), total, filter.Page, filter.PageSize), nil
}

// PreviousPeriod returns the period before the one containing now
func (s *GSTSummaryService) PreviousPeriod(now time.Time) string {
	local := now.In(s.location)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.location)
	return finance.PeriodOf(first.AddDate(0, -1, 0))
}

// GenerateMonthly generates last period's summary for every active store.
// Transient failures are retried; filed summaries are skipped.
func (s *GSTSummaryService) GenerateMonthly(ctx context.Context, now time.Time) (MonthlyRunResult, error) {
	result := MonthlyRunResult{Period: s.PreviousPeriod(now)}

	filter := shared.Filter{
		Page:     1,
		PageSize: shared.MaxPageSize,
		OrderBy:  "created_at",
		OrderDir: "asc",
	}.Normalize().With("status", string(store.StoreStatusActive))

	for {
		stores, err := s.storeRepo.FindAll(ctx, filter)
		if err != nil {
			return result, err
		}
		for i := range stores {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			s.generateWithRetry(ctx, stores[i].ID, &result)
		}
		if len(stores) < filter.PageSize {
			break
		}
		filter.Page++
	}

	s.logger.Info("Monthly GST summaries generated",
		zap.String("period", result.Period),
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *GSTSummaryService) generateWithRetry(ctx context.Context, storeID uuid.UUID, result *MonthlyRunResult) {
	err := retry.Do(
		func() error {
			_, err := s.generate(ctx, storeID, result.Period)
			if shared.ErrorCode(err) != "" {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.retryAttempt),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	switch {
	case err == nil:
		result.Generated++
	case shared.ErrorCode(err) == "SUMMARY_FILED":
		result.Skipped++
	default:
		result.Failed++
		s.logger.Error("Failed to generate GST summary",
			zap.String("store_id", storeID.String()),
			zap.String("period", result.Period),
			zap.Error(err),
		)
	}
}

func (s *GSTSummaryService) load(ctx context.Context, scope Scope, id uuid.UUID) (*finance.GSTSummary, error) {
	summary, err := s.summaryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.allows(summary.StoreID) {
		return nil, shared.ErrNotFound
	}
	return summary, nil
}
