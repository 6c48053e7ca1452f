package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	storeapp "github.com/grocer/backend/internal/application/store"
)

// StoreHandler handles store management
type StoreHandler struct {
	BaseHandler
	storeService *storeapp.StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeService *storeapp.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// Create creates a store
func (h *StoreHandler) Create(c *gin.Context) {
	var req storeapp.CreateStoreRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.storeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists stores
func (h *StoreHandler) List(c *gin.Context) {
	var f storeapp.StoreListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.storeService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a store
func (h *StoreHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.storeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByCode returns a store by its code
func (h *StoreHandler) GetByCode(c *gin.Context) {
	resp, err := h.storeService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update edits a store. Managers may edit their own store.
func (h *StoreHandler) Update(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok || !h.requireStore(c, p, id) {
		return
	}
	var req storeapp.UpdateStoreRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.storeService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate opens a store for orders
func (h *StoreHandler) Activate(c *gin.Context) {
	h.transition(c, h.storeService.Activate)
}

// Deactivate closes a store temporarily
func (h *StoreHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.storeService.Deactivate)
}

// Suspend blocks a store
func (h *StoreHandler) Suspend(c *gin.Context) {
	h.transition(c, h.storeService.Suspend)
}

// Delete removes a store without open orders
func (h *StoreHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.storeService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *StoreHandler) transition(c *gin.Context, apply idAction[storeapp.StoreResponse]) {
	runIDAction(c, &h.BaseHandler, apply)
}

// ServiceAreaHandler handles service area configuration and serviceability
type ServiceAreaHandler struct {
	BaseHandler
	areaService           *storeapp.ServiceAreaService
	serviceabilityService *storeapp.ServiceabilityService
}

// NewServiceAreaHandler creates a new service area handler
func NewServiceAreaHandler(areaService *storeapp.ServiceAreaService, serviceabilityService *storeapp.ServiceabilityService) *ServiceAreaHandler {
	return &ServiceAreaHandler{
		areaService:           areaService,
		serviceabilityService: serviceabilityService,
	}
}

// Create adds a service area to the store in the path
func (h *ServiceAreaHandler) Create(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	storeID, ok := h.pathID(c, "id")
	if !ok || !h.requireStore(c, p, storeID) {
		return
	}
	var req storeapp.CreateServiceAreaRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.areaService.Create(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByStore lists the service areas of the store in the path
func (h *ServiceAreaHandler) ListByStore(c *gin.Context) {
	storeID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var f storeapp.ServiceAreaListFilter
	if !bindQuery(c, &f) {
		return
	}
	f.StoreID = &storeID
	page, err := h.areaService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// List lists service areas across stores
func (h *ServiceAreaHandler) List(c *gin.Context) {
	var f storeapp.ServiceAreaListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.areaService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a service area
func (h *ServiceAreaHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.areaService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update replaces a service area's configuration
func (h *ServiceAreaHandler) Update(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	var req storeapp.UpdateServiceAreaRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.areaService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate resumes deliveries in an area
func (h *ServiceAreaHandler) Activate(c *gin.Context) {
	h.transition(c, h.areaService.Activate)
}

// Deactivate pauses deliveries in an area
func (h *ServiceAreaHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.areaService.Deactivate)
}

// Delete removes a service area
func (h *ServiceAreaHandler) Delete(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.areaService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Check answers whether a pincode, optionally with coordinates, can be served
func (h *ServiceAreaHandler) Check(c *gin.Context) {
	var req storeapp.AvailabilityRequest
	if !bindQuery(c, &req) {
		return
	}
	h.availability(c, req)
}

// Route picks the service area for a delivery with an order amount
func (h *ServiceAreaHandler) Route(c *gin.Context) {
	var req storeapp.AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	h.availability(c, req)
}

func (h *ServiceAreaHandler) availability(c *gin.Context, req storeapp.AvailabilityRequest) {
	resp, err := h.serviceabilityService.Check(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *ServiceAreaHandler) transition(c *gin.Context, apply idAction[storeapp.ServiceAreaResponse]) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// owned resolves the area in the path and checks the caller manages its store
func (h *ServiceAreaHandler) owned(c *gin.Context) (uuid.UUID, bool) {
	p, ok := h.currentCaller(c)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return uuid.Nil, false
	}
	area, err := h.areaService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	if !h.requireStore(c, p, area.StoreID) {
		return uuid.Nil, false
	}
	return id, true
}
