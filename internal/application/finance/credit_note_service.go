package finance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/finance"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CreditNoteService drafts, approves and settles credit notes against delivered orders
type CreditNoteService struct {
	creditNoteRepo finance.CreditNoteRepository
	orderRepo      order.OrderRepository
	ledger         *GSTLedgerService
	transactor     shared.Transactor
	events         shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(
	creditNoteRepo finance.CreditNoteRepository,
	orderRepo order.OrderRepository,
	ledger *GSTLedgerService,
	transactor shared.Transactor,
	events shared.EventPublisher,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *CreditNoteService {
	return &CreditNoteService{
		creditNoteRepo: creditNoteRepo,
		orderRepo:      orderRepo,
		ledger:         ledger,
		transactor:     transactor,
		events:         events,
		metrics:        metrics,
		logger:         logger,
	}
}

// Create drafts a credit note. The running total of non-cancelled notes
// on the order may not exceed its grand total; the order row stays locked
// while the total is checked so concurrent drafts are serialized.
func (s *CreditNoteService) Create(ctx context.Context, scope Scope, req CreateCreditNoteRequest) (*CreditNoteResponse, error) {
	var cn *finance.CreditNote
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		o, err := s.orderRepo.FindByIDForUpdate(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if !scope.allows(o.StoreID) {
			return shared.ErrNotFound
		}
		if o.Status != order.OrderStatusDelivered {
			return shared.NewDomainError("ORDER_NOT_DELIVERED", "Credit notes can only be raised against delivered orders")
		}
		credited, err := s.creditNoteRepo.SumActiveByOrder(txCtx, o.ID)
		if err != nil {
			return err
		}

		cn, err = finance.NewCreditNote(finance.CreditNoteOrder{
			ID:              o.ID,
			OrderNumber:     o.OrderNumber,
			StoreID:         o.StoreID,
			CustomerID:      o.CustomerID,
			GrandTotal:      o.GrandTotal,
			AlreadyCredited: credited,
		}, req.Amount, req.Reason)
		if err != nil {
			return err
		}
		return s.creditNoteRepo.Save(txCtx, cn)
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, cn.PullDomainEvents())

	s.logger.Info("Credit note drafted",
		zap.String("credit_note_id", cn.ID.String()),
		zap.String("note_number", cn.NoteNumber),
		zap.String("order_number", cn.OrderNumber),
		zap.String("amount", cn.Amount.StringFixed(2)),
	)
	resp := ToCreditNoteResponse(cn)
	return &resp, nil
}

// GetByID returns a credit note
func (s *CreditNoteService) GetByID(ctx context.Context, scope Scope, id uuid.UUID) (*CreditNoteResponse, error) {
	cn, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	resp := ToCreditNoteResponse(cn)
	return &resp, nil
}

// List lists credit notes, newest first
func (s *CreditNoteService) List(ctx context.Context, scope Scope, f CreditNoteListFilter) (shared.Paginated[CreditNoteResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   strings.TrimSpace(f.Search),
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()

	switch {
	case scope.StoreID != nil:
		filter = filter.With("store_id", *scope.StoreID)
	case f.StoreID != nil:
		filter = filter.With("store_id", *f.StoreID)
	}
	if f.OrderID != nil {
		filter = filter.With("order_id", *f.OrderID)
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}
	if f.From != nil {
		filter = filter.With("from", *f.From)
	}
	if f.To != nil {
		filter = filter.With("to", *f.To)
	}

	notes, err := s.creditNoteRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[CreditNoteResponse]{}, err
	}
	total, err := s.creditNoteRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[CreditNoteResponse]{}, err
	}
	return shared.NewPaginated(ToCreditNoteResponses(notes), total, filter.Page, filter.PageSize), nil
}

// Approve authorises a draft credit note
func (s *CreditNoteService) Approve(ctx context.Context, scope Scope, id uuid.UUID) (*CreditNoteResponse, error) {
	cn, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := cn.Approve(scope.UserID); err != nil {
		return nil, err
	}
	return s.save(ctx, cn)
}

// Apply settles an approved credit note and reverses its tax in the GST ledger
func (s *CreditNoteService) Apply(ctx context.Context, scope Scope, id uuid.UUID, req ApplyCreditNoteRequest) (*CreditNoteResponse, error) {
	cn, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, cn.OrderID)
	if err != nil {
		return nil, err
	}
	if err := cn.Apply(req.Reference); err != nil {
		return nil, err
	}

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.creditNoteRepo.Save(txCtx, cn); err != nil {
			return err
		}
		return s.ledger.RecordCreditNote(txCtx, cn, o)
	})
	if err != nil {
		s.logger.Error("Failed to apply credit note",
			zap.String("credit_note_id", cn.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	publish(ctx, s.events, s.logger, cn.PullDomainEvents())
	if s.metrics != nil {
		s.metrics.RecordCreditNoteIssued(ctx, cn.StoreID)
	}

	s.logger.Info("Credit note applied",
		zap.String("credit_note_id", cn.ID.String()),
		zap.String("note_number", cn.NoteNumber),
		zap.String("reference", cn.AppliedReference),
	)
	resp := ToCreditNoteResponse(cn)
	return &resp, nil
}

// Cancel voids a draft or approved credit note
func (s *CreditNoteService) Cancel(ctx context.Context, scope Scope, id uuid.UUID, req CancelCreditNoteRequest) (*CreditNoteResponse, error) {
	cn, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := cn.Cancel(req.Reason); err != nil {
		return nil, err
	}
	return s.save(ctx, cn)
}

func (s *CreditNoteService) save(ctx context.Context, cn *finance.CreditNote) (*CreditNoteResponse, error) {
	if err := s.creditNoteRepo.Save(ctx, cn); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, cn.PullDomainEvents())

	s.logger.Info("Credit note updated",
		zap.String("credit_note_id", cn.ID.String()),
		zap.String("status", string(cn.Status)),
	)
	resp := ToCreditNoteResponse(cn)
	return &resp, nil
}

func (s *CreditNoteService) load(ctx context.Context, scope Scope, id uuid.UUID) (*finance.CreditNote, error) {
	cn, err := s.creditNoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.allows(cn.StoreID) {
		return nil, shared.ErrNotFound
	}
	return cn, nil
}

func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, pending []shared.DomainEvent) {
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Error("Failed to publish domain events", zap.Error(err))
	}
}
