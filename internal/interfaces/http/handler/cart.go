package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/grocer/backend/internal/application/cart"
)

// CartHandler handles the customer's per-store carts
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get returns the cart at ?store_id=
func (h *CartHandler) Get(c *gin.Context) {
	p, storeID, ok := h.cartOwner(c)
	if !ok {
		return
	}
	resp, err := h.cartService.Get(c.Request.Context(), p.UserID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem adds a product to the cart of the product's store
func (h *CartHandler) AddItem(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.AddItem(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem sets a line quantity; zero removes the line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "productId")
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.UpdateItem(c.Request.Context(), p.UserID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem removes a line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	p, storeID, ok := h.cartOwner(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "productId")
	if !ok {
		return
	}
	resp, err := h.cartService.RemoveItem(c.Request.Context(), p.UserID, storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	p, storeID, ok := h.cartOwner(c)
	if !ok {
		return
	}
	resp, err := h.cartService.Clear(c.Request.Context(), p.UserID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyCoupon attaches a coupon after validating it against the cart
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req cartapp.ApplyCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.ApplyCoupon(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveCoupon detaches the cart's coupon
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	p, storeID, ok := h.cartOwner(c)
	if !ok {
		return
	}
	resp, err := h.cartService.RemoveCoupon(c.Request.Context(), p.UserID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *CartHandler) cartOwner(c *gin.Context) (caller, uuid.UUID, bool) {
	p, ok := h.currentCaller(c)
	if !ok {
		return caller{}, uuid.Nil, false
	}
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, "store_id query parameter is required")
		return caller{}, uuid.Nil, false
	}
	return p, storeID, true
}
