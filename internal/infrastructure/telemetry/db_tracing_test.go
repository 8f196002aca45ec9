package telemetry_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tims/backend/internal/infrastructure/telemetry"
)

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestDBTracingPlugin_RecordsSpans(t *testing.T) {
	sr := setupTestTracer(t)
	db := openSQLite(t)

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         true,
		DBSystem:        "sqlite",
		SlowQueryThresh: time.Nanosecond,
	}, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(db))

	require.NoError(t, db.Create(&tracedRow{Name: "router"}).Error)

	var rows []tracedRow
	require.NoError(t, db.Find(&rows).Error)
	assert.Len(t, rows, 1)

	spans := sr.Ended()
	require.GreaterOrEqual(t, len(spans), 2, "insert and select are traced")
	for _, s := range spans {
		assert.NotEmpty(t, s.Name())
	}
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	db := openSQLite(t)

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{}, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(db))

	require.NoError(t, db.Create(&tracedRow{Name: "switch"}).Error)
	assert.Empty(t, sr.Ended())
}
