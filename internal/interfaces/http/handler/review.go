package handler

import (
	"github.com/gin-gonic/gin"
	reviewapp "github.com/grocer/backend/internal/application/review"
	"github.com/grocer/backend/internal/domain/identity"
)

// ReviewHandler handles product reviews and moderation
type ReviewHandler struct {
	BaseHandler
	reviewService *reviewapp.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *reviewapp.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create submits a review
func (h *ReviewHandler) Create(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req reviewapp.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.reviewService.Create(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists reviews. Anonymous callers and customers see approved reviews only.
func (h *ReviewHandler) List(c *gin.Context) {
	var f reviewapp.ReviewListFilter
	if !bindQuery(c, &f) {
		return
	}
	role := identity.RoleCustomer
	if p, ok := optionalCaller(c); ok {
		role = p.Role
		if p.isManager() {
			f.StoreID = p.storeScope()
		}
	}
	page, err := h.reviewService.List(c.Request.Context(), role, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a review
func (h *ReviewHandler) GetByID(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.reviewService.GetByID)
}

// Update edits the caller's review
func (h *ReviewHandler) Update(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req reviewapp.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.reviewService.Update(c.Request.Context(), p.UserID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve publishes a review
func (h *ReviewHandler) Approve(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.reviewService.Approve(c.Request.Context(), p.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject hides a review with a note
func (h *ReviewHandler) Reject(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req reviewapp.RejectReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.reviewService.Reject(c.Request.Context(), p.UserID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a review
func (h *ReviewHandler) Delete(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), p.UserID, p.Role, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RatingSummary returns a product's average rating and histogram
func (h *ReviewHandler) RatingSummary(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.reviewService.RatingSummary)
}
