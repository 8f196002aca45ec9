package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/shared"
	"github.com/tims/backend/internal/infrastructure/auth"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid credentials")

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, username, role string) (*auth.Token, error)
}

// AuthService handles registration, login and profile management
type AuthService struct {
	userRepo identity.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a user account
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserResponse, error) {
	user, err := identity.NewUser(input.Username, input.Password, input.Email, input.FullName, identity.Role(input.Role))
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Username or email already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
	)

	resp := ToUserResponse(user)
	return &resp, nil
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown user", zap.String("username", input.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role.String())
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		Token:     token.AccessToken,
		ExpiresAt: token.ExpiresAt,
		TokenType: token.TokenType,
		User:      ToUserResponse(user),
	}, nil
}

// Profile returns the caller's account
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes the caller's email and full name
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(input.Email, input.FullName); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByEmailExcept(ctx, user.Email, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Email already exists")
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the caller's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// ListUsers returns every account, newest first
func (s *AuthService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToUserResponses(users), nil
}
