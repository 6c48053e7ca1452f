package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CreateCreditNoteRequest drafts a credit note against a delivered order
type CreateCreditNoteRequest struct {
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Reason  string          `json:"reason" binding:"required,max=1000"`
}

// ApplyCreditNoteRequest records how the credit was settled
type ApplyCreditNoteRequest struct {
	Reference string `json:"reference" binding:"max=100"`
}

// CancelCreditNoteRequest carries the cancellation reason
type CancelCreditNoteRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// CreditNoteListFilter narrows credit note listings
type CreditNoteListFilter struct {
	StoreID  *uuid.UUID `form:"store_id"`
	OrderID  *uuid.UUID `form:"order_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=DRAFT APPROVED APPLIED CANCELLED"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// LedgerListFilter narrows GST ledger listings
type LedgerListFilter struct {
	StoreID    *uuid.UUID `form:"store_id"`
	Period     string     `form:"period" binding:"omitempty,len=7"`
	SourceType string     `form:"source_type" binding:"omitempty,oneof=SALE CREDIT_NOTE"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GenerateSummaryRequest aggregates a store's ledger for a period
type GenerateSummaryRequest struct {
	StoreID uuid.UUID `json:"store_id" binding:"required"`
	Period  string    `json:"period" binding:"required,len=7"`
}

// SummaryListFilter narrows GST summary listings
type SummaryListFilter struct {
	StoreID  *uuid.UUID `form:"store_id"`
	Period   string     `form:"period" binding:"omitempty,len=7"`
	Status   string     `form:"status" binding:"omitempty,oneof=DRAFT FILED"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Scope limits finance reads and writes to one store; nil means all stores
type Scope struct {
	UserID  uuid.UUID
	StoreID *uuid.UUID
}

func (s Scope) allows(storeID uuid.UUID) bool {
	return s.StoreID == nil || *s.StoreID == storeID
}

// CreditNoteResponse represents a credit note in API responses
type CreditNoteResponse struct {
	ID               uuid.UUID       `json:"id"`
	NoteNumber       string          `json:"note_number"`
	StoreID          uuid.UUID       `json:"store_id"`
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	AppliedAt        *time.Time      `json:"applied_at,omitempty"`
	AppliedReference string          `json:"applied_reference,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason     string          `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// LedgerEntryResponse represents a GST ledger entry
type LedgerEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	StoreID         uuid.UUID       `json:"store_id"`
	Period          string          `json:"period"`
	SourceType      string          `json:"source_type"`
	SourceID        uuid.UUID       `json:"source_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	TransactionDate time.Time       `json:"transaction_date"`
	SupplyType      string          `json:"supply_type"`
	HSNCode         string          `json:"hsn_code,omitempty"`
	GSTRate         decimal.Decimal `json:"gst_rate"`
	TaxableValue    decimal.Decimal `json:"taxable_value"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	TotalTax        decimal.Decimal `json:"total_tax"`
}

// SummaryResponse represents a GST period summary
type SummaryResponse struct {
	ID                uuid.UUID       `json:"id"`
	StoreID           uuid.UUID       `json:"store_id"`
	Period            string          `json:"period"`
	TaxableValue      decimal.Decimal `json:"taxable_value"`
	CGST              decimal.Decimal `json:"cgst"`
	SGST              decimal.Decimal `json:"sgst"`
	IGST              decimal.Decimal `json:"igst"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	SaleEntries       int             `json:"sale_entries"`
	CreditNoteEntries int             `json:"credit_note_entries"`
	Status            string          `json:"status"`
	GeneratedAt       time.Time       `json:"generated_at"`
	FiledAt           *time.Time      `json:"filed_at,omitempty"`
	FiledBy           *uuid.UUID      `json:"filed_by,omitempty"`
}

// ToCreditNoteResponse converts a domain credit note to a response DTO
func ToCreditNoteResponse(cn *finance.CreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:               cn.ID,
		NoteNumber:       cn.NoteNumber,
		StoreID:          cn.StoreID,
		OrderID:          cn.OrderID,
		OrderNumber:      cn.OrderNumber,
		CustomerID:       cn.CustomerID,
		Amount:           cn.Amount,
		Reason:           cn.Reason,
		Status:           string(cn.Status),
		ApprovedBy:       cn.ApprovedBy,
		ApprovedAt:       cn.ApprovedAt,
		AppliedAt:        cn.AppliedAt,
		AppliedReference: cn.AppliedReference,
		CancelledAt:      cn.CancelledAt,
		CancelReason:     cn.CancelReason,
		CreatedAt:        cn.CreatedAt,
	}
}

// ToCreditNoteResponses converts a slice of credit notes
func ToCreditNoteResponses(notes []finance.CreditNote) []CreditNoteResponse {
	out := make([]CreditNoteResponse, len(notes))
	for i := range notes {
		out[i] = ToCreditNoteResponse(&notes[i])
	}
	return out
}

// ToLedgerEntryResponses converts ledger entries
func ToLedgerEntryResponses(entries []finance.GSTLedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			ID:              e.ID,
			StoreID:         e.StoreID,
			Period:          e.Period,
			SourceType:      string(e.SourceType),
			SourceID:        e.SourceID,
			InvoiceNumber:   e.InvoiceNumber,
			TransactionDate: e.TransactionDate,
			SupplyType:      string(e.SupplyType),
			HSNCode:         e.HSNCode,
			GSTRate:         e.GSTRate,
			TaxableValue:    e.TaxableValue,
			CGST:            e.CGST,
			SGST:            e.SGST,
			IGST:            e.IGST,
			TotalTax:        e.TotalTax,
		}
	}
	return out
}

// ToSummaryResponse converts a GST summary
func ToSummaryResponse(s *finance.GSTSummary) SummaryResponse {
	return SummaryResponse{
		ID:                s.ID,
		StoreID:           s.StoreID,
		Period:            s.Period,
		TaxableValue:      s.TaxableValue,
		CGST:              s.CGST,
		SGST:              s.SGST,
		IGST:              s.IGST,
		TotalTax:          s.TotalTax,
		SaleEntries:       s.SaleEntries,
		CreditNoteEntries: s.CreditNoteEntries,
		Status:            string(s.Status),
		GeneratedAt:       s.GeneratedAt,
		FiledAt:           s.FiledAt,
		FiledBy:           s.FiledBy,
	}
}

// ToSummaryResponses converts a slice of summaries
func ToSummaryResponses(ss []finance.GSTSummary) []SummaryResponse {
	out := make([]SummaryResponse, len(ss))
	for i := range ss {
		out[i] = ToSummaryResponse(&ss[i])
	}
	return out
}
