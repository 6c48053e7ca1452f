package finance

import (
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeCreditNote = "CreditNote"
	AggregateTypeGSTSummary = "GSTSummary"
)

// Event type constants
const (
	EventTypeCreditNoteCreated       = "CreditNoteCreated"
	EventTypeCreditNoteStatusChanged = "CreditNoteStatusChanged"
	EventTypeGSTSummaryGenerated     = "GSTSummaryGenerated"
	EventTypeGSTSummaryFiled         = "GSTSummaryFiled"
)

// CreditNoteCreatedEvent is published when a credit note is drafted
type CreditNoteCreatedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID uuid.UUID       `json:"credit_note_id"`
	NoteNumber   string          `json:"note_number"`
	OrderID      uuid.UUID       `json:"order_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewCreditNoteCreatedEvent creates a new CreditNoteCreatedEvent
func NewCreditNoteCreatedEvent(cn *CreditNote) *CreditNoteCreatedEvent {
	return &CreditNoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteCreated, AggregateTypeCreditNote, cn.ID),
		CreditNoteID:    cn.ID,
		NoteNumber:      cn.NoteNumber,
		OrderID:         cn.OrderID,
		Amount:          cn.Amount,
	}
}

// CreditNoteStatusChangedEvent is published on approve, apply and cancel
type CreditNoteStatusChangedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID uuid.UUID        `json:"credit_note_id"`
	OrderID      uuid.UUID        `json:"order_id"`
	OldStatus    CreditNoteStatus `json:"old_status"`
	NewStatus    CreditNoteStatus `json:"new_status"`
}

// NewCreditNoteStatusChangedEvent creates a new CreditNoteStatusChangedEvent
func NewCreditNoteStatusChangedEvent(cn *CreditNote, old CreditNoteStatus) *CreditNoteStatusChangedEvent {
	return &CreditNoteStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteStatusChanged, AggregateTypeCreditNote, cn.ID),
		CreditNoteID:    cn.ID,
		OrderID:         cn.OrderID,
		OldStatus:       old,
		NewStatus:       cn.Status,
	}
}

// GSTSummaryGeneratedEvent is published when a period summary is (re)built
type GSTSummaryGeneratedEvent struct {
	shared.BaseDomainEvent
	StoreID  uuid.UUID       `json:"store_id"`
	Period   string          `json:"period"`
	TotalTax decimal.Decimal `json:"total_tax"`
}

// NewGSTSummaryGeneratedEvent creates a new GSTSummaryGeneratedEvent
func NewGSTSummaryGeneratedEvent(s *GSTSummary) *GSTSummaryGeneratedEvent {
	return &GSTSummaryGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGSTSummaryGenerated, AggregateTypeGSTSummary, s.ID),
		StoreID:         s.StoreID,
		Period:          s.Period,
		TotalTax:        s.TotalTax,
	}
}

// GSTSummaryFiledEvent is published when a summary is filed
type GSTSummaryFiledEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID `json:"store_id"`
	Period  string    `json:"period"`
}

// NewGSTSummaryFiledEvent creates a new GSTSummaryFiledEvent
func NewGSTSummaryFiledEvent(s *GSTSummary) *GSTSummaryFiledEvent {
	return &GSTSummaryFiledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGSTSummaryFiled, AggregateTypeGSTSummary, s.ID),
		StoreID:         s.StoreID,
		Period:          s.Period,
	}
}
