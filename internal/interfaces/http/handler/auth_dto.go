package handler

import (
	"time"

	identityapp "github.com/tims/backend/internal/application/identity"
)

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=admin manager staff"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required,max=100"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=128"`
}

// =====================
// Auth Response DTOs
// =====================

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token     string                   `json:"token"`
	TokenType string                   `json:"token_type"`
	ExpiresAt time.Time                `json:"expires_at"`
	User      identityapp.UserResponse `json:"user"`
}

// UserListResponse wraps the account listing
type UserListResponse struct {
	Count int                        `json:"count"`
	Users []identityapp.UserResponse `json:"users"`
}

// MessageResponse carries a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
