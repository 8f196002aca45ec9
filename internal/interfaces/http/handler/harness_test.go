package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	identityapp "github.com/tims/backend/internal/application/identity"
	inventoryapp "github.com/tims/backend/internal/application/inventory"
	notificationapp "github.com/tims/backend/internal/application/notification"
	partnerapp "github.com/tims/backend/internal/application/partner"
	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/infrastructure/auth"
	"github.com/tims/backend/internal/infrastructure/config"
	"github.com/tims/backend/internal/infrastructure/event"
	"github.com/tims/backend/internal/infrastructure/persistence"
	"github.com/tims/backend/internal/infrastructure/storage"
)

const (
	testUserHeader = "X-Test-User"
	testRoleHeader = "X-Test-Role"
)

// recordingPusher captures frames the push handler would write to sockets
type recordingPusher struct {
	mu     sync.Mutex
	frames [][]byte
}

func (p *recordingPusher) Send(userID *uuid.UUID, payload []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, payload)
	return 1
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

type nopStream struct{}

func (nopStream) Serve(ctx context.Context, userID uuid.UUID, conn *websocket.Conn) {
	_ = conn.Close()
}

// testServer runs the handlers over a real service stack on in-memory SQLite.
// Identity comes from test headers so role gates stay out of the way.
type testServer struct {
	t       *testing.T
	db      *gorm.DB
	engine  *gin.Engine
	admin   *identity.User
	reports *storage.StubReportStorage
	pusher  *recordingPusher
}

func newTestServer(t *testing.T) *testServer {
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
	require.NoError(t, db.AutoMigrate(persistence.Models()...))

	admin, err := identity.NewUser("admin", "admin123", "admin@example.com", "Site Admin", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, db.Create(admin).Error)

	log := zap.NewNop()
	repos := persistence.NewRepositories(db)
	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "tims-test",
	})

	bus := event.NewInMemoryEventBus(log)
	pusher := &recordingPusher{}
	bus.Subscribe(notificationapp.NewPushHandler(pusher, log))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	inventoryService := inventoryapp.NewInventoryService(repos.Items, repos.Transactions, repos.Scope, log)
	inventoryService.SetEventPublisher(bus)
	reports := storage.NewStubReportStorage()
	reportService := inventoryapp.NewReportService(repos.Items, reports, log)
	supplierService := partnerapp.NewSupplierService(repos.Suppliers, repos.Orders, repos.Items, repos.Scope, log)
	supplierService.SetEventPublisher(bus)
	orderService := partnerapp.NewOrderService(repos.Orders, repos.Suppliers, repos.Scope, log)
	orderService.SetEventPublisher(bus)
	notificationService := notificationapp.NewNotificationService(repos.Notifications, 50, log)
	authService := identityapp.NewAuthService(repos.Users, tokens, log)

	authHandler := NewAuthHandler(authService)
	inventoryHandler := NewInventoryHandler(inventoryService, reportService)
	supplierHandler := NewSupplierHandler(supplierService, orderService)
	notificationHandler := NewNotificationHandler(notificationService, nopStream{}, nil)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if id := c.GetHeader(testUserHeader); id != "" {
			setJWTContext(c, uuid.MustParse(id), c.GetHeader(testRoleHeader))
		}
		c.Next()
	})

	api := engine.Group("/api/v1")
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/profile", authHandler.GetProfile)
	authGroup.PUT("/profile", authHandler.UpdateProfile)
	authGroup.PUT("/change-password", authHandler.ChangePassword)
	authGroup.GET("/users", authHandler.ListUsers)

	inv := api.Group("/inventory")
	inv.GET("", inventoryHandler.List)
	inv.POST("", inventoryHandler.Create)
	inv.GET("/stats/overview", inventoryHandler.Stats)
	inv.POST("/reports", inventoryHandler.ExportReport)
	inv.GET("/reports/*key", inventoryHandler.DownloadReport)
	inv.GET("/:id", inventoryHandler.Get)
	inv.PUT("/:id", inventoryHandler.Update)
	inv.DELETE("/:id", inventoryHandler.Delete)
	inv.GET("/:id/transactions", inventoryHandler.ListTransactions)
	inv.POST("/:id/transactions", inventoryHandler.RecordTransaction)

	sup := api.Group("/suppliers")
	sup.GET("", supplierHandler.List)
	sup.POST("", supplierHandler.Create)
	sup.PUT("/orders/:orderId", supplierHandler.UpdateOrderStatus)
	sup.GET("/:id", supplierHandler.Get)
	sup.PUT("/:id", supplierHandler.Update)
	sup.DELETE("/:id", supplierHandler.Delete)
	sup.GET("/:id/orders", supplierHandler.ListOrders)
	sup.POST("/:id/orders", supplierHandler.CreateOrder)

	notes := api.Group("/notifications")
	notes.GET("", notificationHandler.List)
	notes.GET("/unread", notificationHandler.UnreadCount)
	notes.PUT("/read/all", notificationHandler.MarkAllRead)
	notes.PUT("/:id/read", notificationHandler.MarkRead)
	notes.DELETE("/:id", notificationHandler.Delete)

	return &testServer{t: t, db: db, engine: engine, admin: admin, reports: reports, pusher: pusher}
}

// do sends body as JSON, acting as the admin unless as says otherwise
func (s *testServer) do(method, path string, body any, as ...*identity.User) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	actor := s.admin
	if len(as) > 0 {
		actor = as[0]
	}
	if actor != nil {
		req.Header.Set(testUserHeader, actor.ID.String())
		req.Header.Set(testRoleHeader, actor.Role.String())
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// anonymous sends a request carrying no identity
func (s *testServer) anonymous(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(method, path, body, nil)
}

// envelope mirrors dto.Response with a typed payload
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Count *int `json:"count"`
	} `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// createItem posts an item and returns its response
func (s *testServer) createItem(body map[string]any) inventoryapp.ItemResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/inventory", body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[inventoryapp.ItemResponse](s.t, w).Data
}

// createSupplier posts a supplier and returns its response
func (s *testServer) createSupplier(name string) partnerapp.SupplierResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/suppliers", map[string]any{"name": name, "email": "sales@example.com"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[partnerapp.SupplierResponse](s.t, w).Data
}
