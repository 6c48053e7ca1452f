package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/identity"
)

// RegisterRequest is a customer self-registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=120"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally revokes the refresh token along with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest replaces the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest changes the caller's display details
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=120"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
}

// CreateUserRequest is an admin creating a staff or distributor account
type CreateUserRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=120"`
	Email    string     `json:"email" binding:"required,email,max=200"`
	Phone    string     `json:"phone" binding:"omitempty,max=20"`
	Password string     `json:"password" binding:"required,min=8,max=72"`
	Role     string     `json:"role" binding:"required,oneof=CUSTOMER STORE_MANAGER DISTRIBUTOR ADMIN"`
	StoreID  *uuid.UUID `json:"store_id"`
}

// AssignStoreRequest binds a store manager to a store
type AssignStoreRequest struct {
	StoreID uuid.UUID `json:"store_id" binding:"required"`
}

// UserListFilter narrows the admin user list
type UserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=CUSTOMER STORE_MANAGER DISTRIBUTOR ADMIN"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserResponse is a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	StoreID     *uuid.UUID `json:"store_id,omitempty"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// ToUserResponse converts a domain user to a response DTO
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		StoreID:     u.StoreID,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}
