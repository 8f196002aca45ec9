package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	identityapp "github.com/tims/backend/internal/application/identity"
	inventoryapp "github.com/tims/backend/internal/application/inventory"
	notificationapp "github.com/tims/backend/internal/application/notification"
	partnerapp "github.com/tims/backend/internal/application/partner"
	"github.com/tims/backend/internal/infrastructure/auth"
	"github.com/tims/backend/internal/infrastructure/cache"
	"github.com/tims/backend/internal/infrastructure/config"
	"github.com/tims/backend/internal/infrastructure/event"
	"github.com/tims/backend/internal/infrastructure/logger"
	"github.com/tims/backend/internal/infrastructure/persistence"
	"github.com/tims/backend/internal/infrastructure/realtime"
	"github.com/tims/backend/internal/infrastructure/storage"
	"github.com/tims/backend/internal/infrastructure/telemetry"
	"github.com/tims/backend/internal/infrastructure/webhook"
	"github.com/tims/backend/internal/interfaces/http/handler"
	"github.com/tims/backend/internal/interfaces/http/middleware"
	"github.com/tims/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting TIMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Tracing and business metrics
	telemetryCfg := telemetry.ConfigFrom(cfg.Telemetry)

	// OTLP log export, teed onto the console logger
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, cfg.Telemetry.LogsEnabled, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	exportLevel, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		exportLevel = zapcore.InfoLevel
	}
	log = loggerProvider.Tee(log, exportLevel)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	// Continuous profiling; span profiles link traces to their CPU samples
	profiler, err := telemetry.NewProfiler(cfg.Telemetry.Profiling, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	inventoryMetrics, err := telemetry.NewInventoryMetrics(meterProvider.Meter("tims/inventory"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	httpMetrics := telemetry.NewHTTPMetrics(cfg.Telemetry.ServiceName)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Database.SlowThreshold,
		DBSystem:        dbSystem,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider.Meter("tims/database"), telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.MetricsEnabled && cfg.Telemetry.DBMetricsEnabled,
		SlowQueryThreshold: cfg.Database.SlowThreshold,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Stats cache (Redis when enabled, in-memory otherwise)
	statsCache, closeCache := cache.NewStatsCache(cfg.Redis, log)
	defer func() {
		if err := closeCache(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	// Report storage
	var reportStorage inventoryapp.ReportStorage = storage.NewStubReportStorage()
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ReportStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize report storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare report bucket", zap.Error(err))
		}
		reportStorage = s3Storage
	} else {
		log.Info("Object storage disabled, reports are kept in memory and served by the API")
	}

	// Initialize repositories
	repos := persistence.NewRepositories(db.DB)

	// Event bus for post-commit side effects
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	tokens := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(repos.Users, tokens, log)

	inventoryService := inventoryapp.NewInventoryService(repos.Items, repos.Transactions, repos.Scope, log)
	inventoryService.SetEventPublisher(eventBus)
	inventoryService.SetStatsCache(statsCache)
	reportService := inventoryapp.NewReportService(repos.Items, reportStorage, log)

	supplierService := partnerapp.NewSupplierService(repos.Suppliers, repos.Orders, repos.Items, repos.Scope, log)
	supplierService.SetEventPublisher(eventBus)
	orderService := partnerapp.NewOrderService(repos.Orders, repos.Suppliers, repos.Scope, log)
	orderService.SetEventPublisher(eventBus)

	notificationService := notificationapp.NewNotificationService(repos.Notifications, cfg.Notification.ListLimit, log)

	// Websocket hub pushing notifications to connected clients
	hub := realtime.NewHub(log,
		realtime.WithPingInterval(cfg.HTTP.WebSocketPingInterval),
		realtime.WithConnectionGauge(httpMetrics.SetWebSocketConnections),
	)

	// Register event handlers
	eventBus.Subscribe(inventoryapp.NewStatsCacheInvalidator(statsCache, log))
	eventBus.Subscribe(notificationapp.NewPushHandler(hub, log))
	eventBus.Subscribe(inventoryapp.NewMetricsHandler(inventoryMetrics))
	eventBus.Subscribe(partnerapp.NewOrderMetricsHandler(inventoryMetrics))
	if cfg.Webhook.Enabled() {
		dispatcher := webhook.NewDispatcher(cfg.Webhook, log,
			webhook.WithOutcomeHook(inventoryMetrics.RecordWebhookDelivery),
		)
		eventBus.Subscribe(inventoryapp.NewLowStockWebhookHandler(dispatcher, cfg.Webhook.Timeout, log))
		log.Info("Low-stock webhook enabled", zap.String("url", cfg.Webhook.LowStockURL))
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize handlers
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Inventory:    handler.NewInventoryHandler(inventoryService, reportService),
		Supplier:     handler.NewSupplierHandler(supplierService, orderService),
		Notification: handler.NewNotificationHandler(notificationService, hub, originChecker(cfg.HTTP.CORSAllowOrigins)),
	}
	systemHandler := handler.NewSystemHandler(db, statsCache, cfg.App.Name, version)

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup custom validator with json tag name support
	middleware.SetupValidator()

	// Create Gin engine
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Apply middleware chain
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.HTTP.RateLimitRPS),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(httpMetrics.Middleware())

	// Auth endpoints get their own, stricter limiter
	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRPS, cfg.HTTP.AuthRateLimitBurst)
	defer authLimiter.Stop()

	// Setup routes
	router.SystemRoutes(engine, systemHandler, gin.WrapH(httpMetrics.Handler()))
	router.NewRouter(engine).
		Register(router.APIGroups(handlers, router.APIConfig{
			Tokens:      tokens,
			AuthLimiter: authLimiter,
			Logger:      log,
		})...).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	hub.CloseAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// originChecker lets the websocket upgrade accept the same origins as CORS.
// A wildcard accepts any origin; an empty list falls back to same-origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
