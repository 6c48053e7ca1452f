package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	distributorapp "github.com/grocer/backend/internal/application/distributor"
)

// DistributorHandler handles distributor onboarding and KYC review
type DistributorHandler struct {
	BaseHandler
	distributorService *distributorapp.DistributorService
}

// NewDistributorHandler creates a new distributor handler
func NewDistributorHandler(distributorService *distributorapp.DistributorService) *DistributorHandler {
	return &DistributorHandler{distributorService: distributorService}
}

func (p caller) distributorCaller() distributorapp.Caller {
	return distributorapp.Caller{UserID: p.UserID, Role: string(p.Role), Email: p.Email}
}

// Register creates a distributor profile in DRAFT
func (h *DistributorHandler) Register(c *gin.Context) {
	var req distributorapp.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.distributorService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists distributors
func (h *DistributorHandler) List(c *gin.Context) {
	var f distributorapp.DistributorListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.distributorService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a distributor
func (h *DistributorHandler) GetByID(c *gin.Context) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	resp, err := h.distributorService.GetByID(c.Request.Context(), p.distributorCaller(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateProfile edits business details
func (h *DistributorHandler) UpdateProfile(c *gin.Context) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	var req distributorapp.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.distributorService.UpdateProfile(c.Request.Context(), p.distributorCaller(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RequestDocumentUpload records a KYC document and returns its upload URL
func (h *DistributorHandler) RequestDocumentUpload(c *gin.Context) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	var req distributorapp.DocumentUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.distributorService.RequestDocumentUpload(c.Request.Context(), p.distributorCaller(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmDocument marks a document uploaded once it is in storage
func (h *DistributorHandler) ConfirmDocument(c *gin.Context) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "docId")
	if !ok {
		return
	}
	resp, err := h.distributorService.ConfirmDocument(c.Request.Context(), p.distributorCaller(), id, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DocumentDownload returns a short-lived download URL
func (h *DistributorHandler) DocumentDownload(c *gin.Context) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "docId")
	if !ok {
		return
	}
	resp, err := h.distributorService.DocumentDownloadURL(c.Request.Context(), p.distributorCaller(), id, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit sends KYC for review
func (h *DistributorHandler) Submit(c *gin.Context) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	resp, err := h.distributorService.Submit(c.Request.Context(), p.distributorCaller(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StartReview takes a submitted KYC under review
func (h *DistributorHandler) StartReview(c *gin.Context) {
	h.review(c, h.distributorService.StartReview)
}

// Approve approves KYC
func (h *DistributorHandler) Approve(c *gin.Context) {
	h.review(c, h.distributorService.Approve)
}

// Reject returns KYC with a reason
func (h *DistributorHandler) Reject(c *gin.Context) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	var req distributorapp.RejectKYCRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.distributorService.Reject(c.Request.Context(), p.UserID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Suspend deactivates an approved distributor
func (h *DistributorHandler) Suspend(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.distributorService.Suspend)
}

// Reinstate reactivates a suspended distributor
func (h *DistributorHandler) Reinstate(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.distributorService.Reinstate)
}

func (h *DistributorHandler) review(c *gin.Context, apply func(ctx context.Context, reviewerID, id uuid.UUID) (*distributorapp.DistributorResponse, error)) {
	p, id, ok := h.target(c)
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), p.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *DistributorHandler) target(c *gin.Context) (caller, uuid.UUID, bool) {
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
