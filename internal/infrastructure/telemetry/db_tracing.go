package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bound variables in db.statement
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // postgresql or sqlite
}

// DBTracingPlugin registers otelgorm plus a slow query annotator.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs the otelgorm plugin and the slow query callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

type queryStartKey struct{}

func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}

	cb := db.Callback()
	steps := []struct {
		op       string
		register func(name string, before, after func(*gorm.DB)) error
	}{
		{"create", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register("tims_timing:before_"+n, b); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("tims_slow_query:"+n, a)
		}},
		{"query", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register("tims_timing:before_"+n, b); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("tims_slow_query:"+n, a)
		}},
		{"update", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register("tims_timing:before_"+n, b); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("tims_slow_query:"+n, a)
		}},
		{"delete", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register("tims_timing:before_"+n, b); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("tims_slow_query:"+n, a)
		}},
		{"row", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Row().Before("gorm:row").Register("tims_timing:before_"+n, b); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register("tims_slow_query:"+n, a)
		}},
		{"raw", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register("tims_timing:before_"+n, b); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("tims_slow_query:"+n, a)
		}},
	}
	for _, s := range steps {
		if err := s.register(s.op, before, p.afterQuery); err != nil {
			return err
		}
	}
	return nil
}

func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
