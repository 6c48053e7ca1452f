package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/interfaces/http/dto"
	"github.com/grocer/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Page sends a paginated list
func Page[T any](c *gin.Context, p shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(p))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// HandleError writes a domain error with the status its code maps to.
// Anything else is a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.StatusForCode(code), code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON binds the request body, writing a validation error on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters, writing a validation error on failure
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathID parses a UUID path parameter
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// caller is the authenticated principal of a request
type caller struct {
	UserID  uuid.UUID
	Email   string
	Role    identity.Role
	StoreID *uuid.UUID
}

func (p caller) isAdmin() bool { return p.Role == identity.RoleAdmin }

func (p caller) isManager() bool { return p.Role == identity.RoleStoreManager }

// storeScope is nil for admins and the assigned store for managers
func (p caller) storeScope() *uuid.UUID {
	if p.isAdmin() {
		return nil
	}
	if p.StoreID == nil {
		none := uuid.Nil
		return &none
	}
	return p.StoreID
}

// manages reports whether the caller may act on storeID
func (p caller) manages(storeID uuid.UUID) bool {
	if p.isAdmin() {
		return true
	}
	return p.isManager() && p.StoreID != nil && *p.StoreID == storeID
}

// currentCaller reads the JWT claims set by the auth middleware
func (h *BaseHandler) currentCaller(c *gin.Context) (caller, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return caller{}, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid user in token")
		return caller{}, false
	}
	return caller{
		UserID:  userID,
		Email:   claims.Email,
		Role:    identity.Role(claims.Role),
		StoreID: claims.GetStoreUUID(),
	}, true
}

// optionalCaller returns the caller when a valid token was presented
func optionalCaller(c *gin.Context) (caller, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		return caller{}, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return caller{}, false
	}
	return caller{
		UserID:  userID,
		Email:   claims.Email,
		Role:    identity.Role(claims.Role),
		StoreID: claims.GetStoreUUID(),
	}, true
}

// requireStore writes a 403 unless the caller manages storeID
func (h *BaseHandler) requireStore(c *gin.Context, p caller, storeID uuid.UUID) bool {
	if !p.manages(storeID) {
		h.Error(c, http.StatusForbidden, "STORE_MISMATCH", "You can only manage your own store")
		return false
	}
	return true
}

// idAction is a service call acting on the aggregate named in the path
type idAction[T any] func(ctx context.Context, id uuid.UUID) (*T, error)

func runIDAction[T any](c *gin.Context, h *BaseHandler, apply idAction[T]) {
	id, ok := h.pathID(c, "id")
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
