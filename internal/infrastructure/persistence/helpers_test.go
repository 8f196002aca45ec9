package persistence

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/partner"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

// newMockDB wraps sqlmock in a postgres-dialect gorm connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return db, mock, mockDB
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(partner.SupplierAttributes{
		Name:          name,
		ContactPerson: "Dana Ops",
		Email:         "sales@" + uuid.NewString()[:8] + ".example.com",
		Status:        partner.SupplierStatusActive,
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(s).Error)
	return s
}

func seedItem(t *testing.T, db *gorm.DB, attrs inventory.ItemAttributes) *inventory.InventoryItem {
	t.Helper()
	item, _, err := inventory.NewInventoryItem(attrs)
	require.NoError(t, err)
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedUser(t *testing.T, db *gorm.DB, username string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, "secret123", username+"@example.com", "Test "+username, role)
	require.NoError(t, err)
	require.NoError(t, db.Create(u).Error)
	return u
}
