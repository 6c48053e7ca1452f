package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/grocer/backend/internal/application/catalog"
)

// CategoryHandler handles the shared category tree
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// Create creates a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists categories
func (h *CategoryHandler) List(c *gin.Context) {
	var f catalogapp.CategoryListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.categoryService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a category
func (h *CategoryHandler) GetByID(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.categoryService.GetByID)
}

// Update edits a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate makes a category visible
func (h *CategoryHandler) Activate(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.categoryService.Activate)
}

// Deactivate hides a category
func (h *CategoryHandler) Deactivate(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.categoryService.Deactivate)
}

// Delete removes an unused leaf category
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ProductHandler handles store products and stock
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create adds a product to a store
func (h *ProductHandler) Create(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.requireStore(c, p, req.StoreID) {
		return
	}
	resp, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists products
func (h *ProductHandler) List(c *gin.Context) {
	var f catalogapp.ProductListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.productService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a product
func (h *ProductHandler) GetByID(c *gin.Context) {
	runIDAction(c, &h.BaseHandler, h.productService.GetByID)
}

// Update edits a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdjustStock applies a signed stock change
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	var req catalogapp.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.productService.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate puts a product on sale
func (h *ProductHandler) Activate(c *gin.Context) {
	h.transition(c, h.productService.Activate)
}

// Deactivate takes a product off sale
func (h *ProductHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.productService.Deactivate)
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ProductHandler) transition(c *gin.Context, apply idAction[catalogapp.ProductResponse]) {
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

// owned resolves the product in the path and checks the caller manages its store
func (h *ProductHandler) owned(c *gin.Context) (uuid.UUID, bool) {
	p, ok := h.currentCaller(c)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return uuid.Nil, false
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	if !h.requireStore(c, p, product.StoreID) {
		return uuid.Nil, false
	}
	return id, true
}
