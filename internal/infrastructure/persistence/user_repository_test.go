package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/shared"
)

func TestGormUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", identity.RoleAdmin)
	bob := seedUser(t, db, "bob", identity.RoleStaff)

	t.Run("find by username", func(t *testing.T) {
		u, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)
		assert.True(t, u.VerifyPassword("secret123"))

		_, err = repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("uniqueness checks", func(t *testing.T) {
		exists, err := repo.ExistsByUsernameOrEmail(ctx, "carol", "bob@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmailExcept(ctx, "bob@example.com", bob.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByEmailExcept(ctx, "bob@example.com", alice.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup, err := identity.NewUser("alice", "secret123", "other@example.com", "Other", identity.RoleStaff)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("save profile", func(t *testing.T) {
		require.NoError(t, bob.UpdateProfile("bobby@example.com", "Bobby"))
		require.NoError(t, repo.Save(ctx, bob))

		u, err := repo.FindByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bobby", u.FullName)
		assert.Equal(t, "bobby@example.com", u.Email)
	})

	t.Run("save missing user", func(t *testing.T) {
		ghost := *bob
		ghost.ID = uuid.New()
		assert.ErrorIs(t, repo.Save(ctx, &ghost), shared.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		users, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}
