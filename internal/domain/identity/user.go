package identity

import (
	"regexp"
	"strings"

	"github.com/tims/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = bcrypt.DefaultCost
	minPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an operator of the system
type User struct {
	shared.BaseAggregateRoot
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex" json:"email"`
	FullName     string `gorm:"type:varchar(200);not null" json:"full_name"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a user with a hashed password
func NewUser(username, password, email, fullName string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewValidationError("Username is required")
	}
	if len(username) > 100 {
		return nil, shared.NewValidationError("Username cannot exceed 100 characters")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.NewValidationError("Full name is required")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid role")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		FullName:          strings.TrimSpace(fullName),
		Role:              role,
		PasswordHash:      hash,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after checking the current one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError(shared.CodeUnauthorized, "Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := hashPassword(next)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	u.PasswordHash = hash
	u.Touch()
	u.IncrementVersion()
	return nil
}

// UpdateProfile sets the editable profile fields
func (u *User) UpdateProfile(email, fullName string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if strings.TrimSpace(fullName) == "" {
		return shared.NewValidationError("Full name is required")
	}
	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.FullName = strings.TrimSpace(fullName)
	u.Touch()
	u.IncrementVersion()
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewValidationError("Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 200 || !emailRegex.MatchString(email) {
		return shared.NewValidationError("Valid email is required")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
