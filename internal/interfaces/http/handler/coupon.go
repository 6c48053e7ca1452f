package handler

import (
	"github.com/gin-gonic/gin"
	couponapp "github.com/grocer/backend/internal/application/coupon"
)

// CouponHandler handles coupon administration and validation
type CouponHandler struct {
	BaseHandler
	couponService *couponapp.CouponService
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *couponapp.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// Create creates a coupon
func (h *CouponHandler) Create(c *gin.Context) {
	var req couponapp.CreateCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.couponService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists coupons
func (h *CouponHandler) List(c *gin.Context) {
	var f couponapp.CouponListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.couponService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a coupon
func (h *CouponHandler) GetByID(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.couponService.GetByID)
}

// GetByCode returns a coupon by its code
func (h *CouponHandler) GetByCode(c *gin.Context) {
	resp, err := h.couponService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update replaces a coupon's description and terms
func (h *CouponHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req couponapp.UpdateCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.couponService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate enables a coupon
func (h *CouponHandler) Activate(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.couponService.Activate)
}

// Deactivate disables a coupon
func (h *CouponHandler) Deactivate(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.couponService.Deactivate)
}

// Delete removes a coupon that was never redeemed
func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Validate previews the discount a coupon gives the caller.
// An inapplicable coupon is a 200 with valid=false and the reason code.
func (h *CouponHandler) Validate(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req couponapp.ValidateCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.couponService.Validate(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListUsages lists a coupon's redemptions
func (h *CouponHandler) ListUsages(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var f couponapp.UsageListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.couponService.ListUsages(c.Request.Context(), id, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}
