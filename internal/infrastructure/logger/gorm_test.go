package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn() (string, int64) { return "SELECT 1", 1 }

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Second)

		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))

		assert.Equal(t, 1, logs.FilterMessage("sql error").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Second)

		l.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow query", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

		assert.Equal(t, 1, logs.FilterMessage("slow sql").Len())
	})

	t.Run("silent", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Second).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))

		assert.Equal(t, 0, logs.Len())
	})
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
}
