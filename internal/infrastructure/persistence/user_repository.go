package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var u identity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return &u, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var u identity.User
	if err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&u).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return &u, nil
}

func (r *GormUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *GormUserRepository) ExistsByEmailExcept(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("email = ? AND id <> ?", email, id).
		Count(&count).Error
	return count > 0, err
}

// FindAll lists users newest first
func (r *GormUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	users := make([]identity.User, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) Create(ctx context.Context, u *identity.User) error {
	return translateError(r.db.WithContext(ctx).Create(u).Error, "User")
}

// Save writes the profile and password hash of an existing user
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	result := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"email":         u.Email,
			"full_name":     u.FullName,
			"role":          u.Role,
			"password_hash": u.PasswordHash,
			"version":       u.Version,
			"updated_at":    u.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "User")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("User")
	}
	return nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
