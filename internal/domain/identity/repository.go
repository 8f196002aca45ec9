package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// ExistsByEmailExcept checks email uniqueness ignoring the given user
	ExistsByEmailExcept(ctx context.Context, email string, id uuid.UUID) (bool, error)
	// FindAll lists users, newest first
	FindAll(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user *User) error
	Save(ctx context.Context, user *User) error
}
