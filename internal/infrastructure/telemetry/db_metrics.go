package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Database metric attribute keys.
const (
	AttrDBState     = attribute.Key("state")
	AttrDBOperation = attribute.Key("operation")
	AttrDBTable     = attribute.Key("table")
)

var dbDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// DBMetricsConfig holds configuration for database metrics collection.
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration // default 200ms
	PoolStatsInterval  time.Duration // default 15s
}

// DBMetrics records connection pool usage and per-operation query counts.
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge
	queryTotal         *Counter
	queryErrors        *Counter
	queryDuration      metric.Float64Histogram
	slowQueryTotal     *Counter

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewDBMetrics creates the database instruments on meter.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	m := &DBMetrics{config: cfg, logger: logger, stopCh: make(chan struct{})}
	var err error
	if m.poolConnections, err = NewGauge(meter, "tims_db_pool_connections",
		"Number of connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolConnectionsMax, err = NewGauge(meter, "tims_db_pool_connections_max",
		"Maximum number of open connections", "{connection}"); err != nil {
		return nil, err
	}
	if m.queryTotal, err = NewCounter(meter, "tims_db_query_total",
		"Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.queryErrors, err = NewCounter(meter, "tims_db_query_errors_total",
		"Failed database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "tims_db_slow_query_total",
		"Queries slower than the slow query threshold, by table", "{query}"); err != nil {
		return nil, err
	}
	m.queryDuration, err = meter.Float64Histogram("tims_db_query_duration_seconds",
		metric.WithDescription("Database query latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(dbDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram tims_db_query_duration_seconds: %w", err)
	}
	return m, nil
}

// StartPoolStats samples sqlDB.Stats every PoolStatsInterval until Stop or
// ctx is done.
func (m *DBMetrics) StartPoolStats(ctx context.Context, sqlDB *sql.DB) {
	m.sqlDB = sqlDB
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		m.collectPoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				m.collectPoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	m.logger.Info("Started database pool stats collection",
		zap.Duration("interval", m.config.PoolStatsInterval),
	)
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	if m.sqlDB == nil {
		return
	}
	stats := m.sqlDB.Stats()
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

// RecordQuery records one finished query.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "OTHER"
	}
	op := AttrDBOperation.String(operation)
	m.queryTotal.Inc(ctx, op)
	m.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(op))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		m.queryErrors.Inc(ctx, op)
	}
	if duration > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// DBMetricsPlugin feeds GORM callbacks into DBMetrics.
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

// NewDBMetricsPlugin creates the GORM plugin.
func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

// Name implements gorm.Plugin.
func (p *DBMetricsPlugin) Name() string { return "tims:db_metrics" }

type dbMetricsStartKey struct{}

// Initialize implements gorm.Plugin.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, dbMetricsStartKey{}, time.Now())
		}
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			op := operation
			if op == "" {
				op = detectOperationType(tx.Statement.SQL.String())
			}
			p.record(tx, op)
		}
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("tims_metrics:before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("tims_metrics:after_create", after("INSERT")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("tims_metrics:before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("tims_metrics:after_query", after("SELECT")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tims_metrics:before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("tims_metrics:after_update", after("UPDATE")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("tims_metrics:before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("tims_metrics:after_delete", after("DELETE")); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tims_metrics:before_row", before); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("tims_metrics:after_row", after("")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("tims_metrics:before_raw", before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("tims_metrics:after_raw", after(""))
}

func (p *DBMetricsPlugin) record(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var duration time.Duration
	if start, ok := ctx.Value(dbMetricsStartKey{}).(time.Time); ok {
		duration = time.Since(start)
	}
	p.metrics.RecordQuery(ctx, operation, tx.Statement.Table, duration, tx.Error)
}

func detectOperationType(query string) string {
	query = strings.ToUpper(strings.TrimSpace(query))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(query, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics installs the query plugin on db and starts pool sampling.
// It returns nil when disabled; callers Stop the result on shutdown.
func RegisterDBMetrics(ctx context.Context, db *gorm.DB, meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	m, err := NewDBMetrics(meter, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(m)); err != nil {
		return nil, fmt.Errorf("failed to register db metrics plugin: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB for pool metrics: %w", err)
	}
	m.StartPoolStats(ctx, sqlDB)
	return m, nil
}
