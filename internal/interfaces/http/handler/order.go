package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/grocer/backend/internal/application/order"
)

// OrderHandler handles checkout and the order lifecycle
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (p caller) viewer() orderapp.Viewer {
	return orderapp.Viewer{UserID: p.UserID, Role: string(p.Role), StoreID: p.StoreID}
}

// Checkout places an order from the caller's cart
func (h *OrderHandler) Checkout(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req orderapp.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.Checkout(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists the orders visible to the caller
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var f orderapp.OrderListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), p.viewer(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns an order
func (h *OrderHandler) GetByID(c *gin.Context) {
	h.act(c, h.orderService.GetByID)
}

// GetByNumber returns an order by its number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	resp, err := h.orderService.GetByNumber(c.Request.Context(), p.viewer(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm accepts a pending order
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.act(c, h.orderService.Confirm)
}

// Pack marks an order packed
func (h *OrderHandler) Pack(c *gin.Context) {
	h.act(c, h.orderService.Pack)
}

// Dispatch hands an order to delivery
func (h *OrderHandler) Dispatch(c *gin.Context) {
	h.act(c, h.orderService.Dispatch)
}

// Deliver completes an order
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.act(c, h.orderService.Deliver)
}

// MarkPaid records payment
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.act(c, h.orderService.MarkPaid)
}

// Cancel cancels an order with a reason
func (h *OrderHandler) Cancel(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orderapp.CancelOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.Cancel(c.Request.Context(), p.viewer(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *OrderHandler) act(c *gin.Context, apply func(context.Context, orderapp.Viewer, uuid.UUID) (*orderapp.OrderResponse, error)) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), p.viewer(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
