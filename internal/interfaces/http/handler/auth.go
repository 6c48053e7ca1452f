package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/grocer/backend/internal/application/identity"
	"github.com/grocer/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and the caller's own profile
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a customer account and signs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login exchanges credentials for a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh rotates a refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout revokes the presented access token and, if given, the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req identityapp.LogoutRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the caller's profile
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	resp, err := h.authService.GetProfile(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateMe edits the caller's name and phone
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.UpdateProfile(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangePassword changes the caller's password and revokes older sessions
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), p.UserID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UserHandler handles admin user management
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create creates a user with any role
func (h *UserHandler) Create(c *gin.Context) {
	var req identityapp.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists users
func (h *UserHandler) List(c *gin.Context) {
	var f identityapp.UserListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.userService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a user
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignStore binds a store manager to a store
func (h *UserHandler) AssignStore(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req identityapp.AssignStoreRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.userService.AssignStore(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Suspend blocks a user and revokes their sessions
func (h *UserHandler) Suspend(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.userService.Suspend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate lifts a suspension
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.userService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
