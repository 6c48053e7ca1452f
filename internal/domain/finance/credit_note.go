package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditNoteStatus represents the status of a credit note
type CreditNoteStatus string

const (
	CreditNoteStatusDraft     CreditNoteStatus = "DRAFT"
	CreditNoteStatusApproved  CreditNoteStatus = "APPROVED"
	CreditNoteStatusApplied   CreditNoteStatus = "APPLIED"
	CreditNoteStatusCancelled CreditNoteStatus = "CANCELLED"
)

// IsValid checks if the status is known
func (s CreditNoteStatus) IsValid() bool {
	switch s {
	case CreditNoteStatusDraft, CreditNoteStatusApproved, CreditNoteStatusApplied, CreditNoteStatusCancelled:
		return true
	}
	return false
}

// CreditNote reduces the value of a delivered order, e.g. for damaged or missing items
type CreditNote struct {
	shared.BaseAggregateRoot
	NoteNumber       string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	StoreID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	OrderID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	OrderNumber      string           `gorm:"type:varchar(32);not null"`
	CustomerID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Reason           string           `gorm:"type:text;not null"`
	Status           CreditNoteStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ApprovedBy       *uuid.UUID       `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	AppliedAt        *time.Time
	AppliedReference string `gorm:"type:varchar(100)"`
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CreditNote) TableName() string {
	return "credit_notes"
}

// CreditNoteOrder carries the order facts a credit note is validated against
type CreditNoteOrder struct {
	ID          uuid.UUID
	OrderNumber string
	StoreID     uuid.UUID
	CustomerID  uuid.UUID
	GrandTotal  decimal.Decimal
	// AlreadyCredited is the sum of non-cancelled notes against the order
	AlreadyCredited decimal.Decimal
}

// CreditableAmount is what remains to be credited on the order
func (o CreditNoteOrder) CreditableAmount() decimal.Decimal {
	return o.GrandTotal.Sub(o.AlreadyCredited)
}

// GenerateCreditNoteNumber returns CN-YYYYMM-XXXXXX
func GenerateCreditNoteNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("CN-%s-%s", at.Format("200601"), suffix)
}

// NewCreditNote drafts a credit note against an order
func NewCreditNote(order CreditNoteOrder, amount decimal.Decimal, reason string) (*CreditNote, error) {
	if order.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit note amount must be positive")
	}
	if amount.Exponent() < -2 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit note amount cannot have more than 2 decimal places")
	}
	if amount.GreaterThan(order.CreditableAmount()) {
		return nil, shared.NewDomainError("CREDIT_EXCEEDS_ORDER",
			fmt.Sprintf("Credit note amount exceeds the creditable balance of %s", order.CreditableAmount().StringFixed(2)))
	}

	cn := &CreditNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StoreID:           order.StoreID,
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        order.CustomerID,
		Amount:            amount,
		Reason:            reason,
		Status:            CreditNoteStatusDraft,
	}
	cn.NoteNumber = GenerateCreditNoteNumber(cn.CreatedAt)
	cn.AddDomainEvent(NewCreditNoteCreatedEvent(cn))
	return cn, nil
}

// Approve authorises the credit note
func (cn *CreditNote) Approve(approverID uuid.UUID) error {
	if cn.Status != CreditNoteStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft credit notes can be approved")
	}
	now := time.Now()
	cn.ApprovedBy = &approverID
	cn.ApprovedAt = &now
	cn.setStatus(CreditNoteStatusApproved)
	return nil
}

// Apply settles the credit note, e.g. as a refund or wallet credit
func (cn *CreditNote) Apply(reference string) error {
	if cn.Status != CreditNoteStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved credit notes can be applied")
	}
	now := time.Now()
	cn.AppliedAt = &now
	cn.AppliedReference = strings.TrimSpace(reference)
	cn.setStatus(CreditNoteStatusApplied)
	return nil
}

// Cancel voids a credit note that has not been applied
func (cn *CreditNote) Cancel(reason string) error {
	if cn.Status != CreditNoteStatusDraft && cn.Status != CreditNoteStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only draft or approved credit notes can be cancelled")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}
	now := time.Now()
	cn.CancelledAt = &now
	cn.CancelReason = reason
	cn.setStatus(CreditNoteStatusCancelled)
	return nil
}

func (cn *CreditNote) setStatus(s CreditNoteStatus) {
	old := cn.Status
	cn.Status = s
	cn.UpdatedAt = time.Now()
	cn.IncrementVersion()
	cn.AddDomainEvent(NewCreditNoteStatusChangedEvent(cn, old))
}
