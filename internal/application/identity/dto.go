package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/tims/backend/internal/domain/identity"
)

// RegisterInput contains the input for user registration
type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	TokenType string
	User      UserResponse
}

// UpdateProfileInput contains the editable profile fields
type UpdateProfileInput struct {
	Email    string
	FullName string
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// UserResponse is a user without credentials
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of domain users
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}
