package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/grocer/backend/internal/application/finance"
)

// FinanceHandler handles credit notes and GST reporting. Store managers are
// limited to their own store.
type FinanceHandler struct {
	BaseHandler
	creditNoteService *financeapp.CreditNoteService
	ledgerService     *financeapp.GSTLedgerService
	summaryService    *financeapp.GSTSummaryService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(
	creditNoteService *financeapp.CreditNoteService,
	ledgerService *financeapp.GSTLedgerService,
	summaryService *financeapp.GSTSummaryService,
) *FinanceHandler {
	return &FinanceHandler{
		creditNoteService: creditNoteService,
		ledgerService:     ledgerService,
		summaryService:    summaryService,
	}
}

func (p caller) financeScope() financeapp.Scope {
	return financeapp.Scope{UserID: p.UserID, StoreID: p.storeScope()}
}

// CreateCreditNote drafts a credit note against a delivered order
func (h *FinanceHandler) CreateCreditNote(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req financeapp.CreateCreditNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.creditNoteService.Create(c.Request.Context(), p.financeScope(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListCreditNotes lists credit notes
func (h *FinanceHandler) ListCreditNotes(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var f financeapp.CreditNoteListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.creditNoteService.List(c.Request.Context(), p.financeScope(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetCreditNote returns a credit note
func (h *FinanceHandler) GetCreditNote(c *gin.Context) {
	h.creditNote(c, h.creditNoteService.GetByID)
}

// ApproveCreditNote approves a draft credit note
func (h *FinanceHandler) ApproveCreditNote(c *gin.Context) {
	h.creditNote(c, h.creditNoteService.Approve)
}

// ApplyCreditNote applies an approved credit note and posts it to the ledger
func (h *FinanceHandler) ApplyCreditNote(c *gin.Context) {
	p, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req financeapp.ApplyCreditNoteRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	resp, err := h.creditNoteService.Apply(c.Request.Context(), p.financeScope(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelCreditNote cancels a credit note that was not applied
func (h *FinanceHandler) CancelCreditNote(c *gin.Context) {
	p, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req financeapp.CancelCreditNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.creditNoteService.Cancel(c.Request.Context(), p.financeScope(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListLedger lists GST ledger entries
func (h *FinanceHandler) ListLedger(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var f financeapp.LedgerListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.ledgerService.List(c.Request.Context(), p.financeScope(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GenerateSummary aggregates a store's ledger for a period
func (h *FinanceHandler) GenerateSummary(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req financeapp.GenerateSummaryRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.summaryService.Generate(c.Request.Context(), p.financeScope(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListSummaries lists GST summaries
func (h *FinanceHandler) ListSummaries(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var f financeapp.SummaryListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.summaryService.List(c.Request.Context(), p.financeScope(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetSummary returns a GST summary
func (h *FinanceHandler) GetSummary(c *gin.Context) {
	h.summary(c, h.summaryService.GetByID)
}

// FileSummary locks a summary as filed
func (h *FinanceHandler) FileSummary(c *gin.Context) {
	h.summary(c, h.summaryService.File)
}

func (h *FinanceHandler) creditNote(c *gin.Context, apply func(context.Context, financeapp.Scope, uuid.UUID) (*financeapp.CreditNoteResponse, error)) {
	p, id, ok := h.scoped(c)
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), p.financeScope(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *FinanceHandler) summary(c *gin.Context, apply func(context.Context, financeapp.Scope, uuid.UUID) (*financeapp.SummaryResponse, error)) {
	p, id, ok := h.scoped(c)
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), p.financeScope(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *FinanceHandler) scoped(c *gin.Context) (caller, uuid.UUID, bool) {
	p, ok := h.currentCaller(c)
	if !ok {
		return caller{}, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return caller{}, uuid.Nil, false
	}
	return p, id, true
}
