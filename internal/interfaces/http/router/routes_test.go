package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
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
	"github.com/tims/backend/internal/infrastructure/persistence"
	"github.com/tims/backend/internal/infrastructure/storage"
	"github.com/tims/backend/internal/interfaces/http/handler"
	"github.com/tims/backend/internal/interfaces/http/middleware"
)

type streamRecorder struct {
	served chan uuid.UUID
}

func (s *streamRecorder) Serve(ctx context.Context, userID uuid.UUID, conn *websocket.Conn) {
	s.served <- userID
	_ = conn.Close()
}

type apiFixture struct {
	engine *gin.Engine
	tokens *auth.JWTService
	stream *streamRecorder
	users  map[identity.Role]*identity.User
}

func newAPIFixture(t *testing.T, authLimiter *middleware.RateLimiter) *apiFixture {
	t.Helper()
	middleware.SetupValidator()

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

	users := make(map[identity.Role]*identity.User)
	for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleManager, identity.RoleStaff} {
		u, err := identity.NewUser(string(role)+"1", "secret123", string(role)+"@example.com", "Test "+string(role), role)
		require.NoError(t, err)
		require.NoError(t, db.Create(u).Error)
		users[role] = u
	}

	log := zap.NewNop()
	repos := persistence.NewRepositories(db)
	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                "routes-test-secret-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "tims-test",
	})
	stream := &streamRecorder{served: make(chan uuid.UUID, 1)}

	handlers := Handlers{
		Auth: handler.NewAuthHandler(identityapp.NewAuthService(repos.Users, tokens, log)),
		Inventory: handler.NewInventoryHandler(
			inventoryapp.NewInventoryService(repos.Items, repos.Transactions, repos.Scope, log),
			inventoryapp.NewReportService(repos.Items, storage.NewStubReportStorage(), log),
		),
		Supplier: handler.NewSupplierHandler(
			partnerapp.NewSupplierService(repos.Suppliers, repos.Orders, repos.Items, repos.Scope, log),
			partnerapp.NewOrderService(repos.Orders, repos.Suppliers, repos.Scope, log),
		),
		Notification: handler.NewNotificationHandler(
			notificationapp.NewNotificationService(repos.Notifications, 50, log),
			stream,
			func(*http.Request) bool { return true },
		),
	}

	engine := gin.New()
	NewRouter(engine).
		Register(APIGroups(handlers, APIConfig{Tokens: tokens, AuthLimiter: authLimiter, Logger: log})...).
		Setup()
	SystemRoutes(engine, handler.NewSystemHandler(sqlPinger{db: db}, nil, "tims", "test"), nil)

	return &apiFixture{engine: engine, tokens: tokens, stream: stream, users: users}
}

type sqlPinger struct{ db *gorm.DB }

func (p sqlPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (f *apiFixture) token(t *testing.T, role identity.Role) string {
	t.Helper()
	u := f.users[role]
	tok, err := f.tokens.GenerateToken(u.ID, u.Username, u.Role.String())
	require.NoError(t, err)
	return tok.AccessToken
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func createdID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestAPIGroups_PublicAndProtected(t *testing.T) {
	f := newAPIFixture(t, nil)

	w := f.call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "staff1", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.call(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "newtech", "password": "secret123", "email": "newtech@example.com", "full_name": "New Tech",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	for _, path := range []string{"/api/v1/auth/profile", "/api/v1/inventory", "/api/v1/suppliers", "/api/v1/notifications"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, f.call(t, http.MethodGet, path, "", nil).Code)
			assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, path, f.token(t, identity.RoleStaff), nil).Code)
		})
	}

	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/health", "", nil).Code)
}

func TestAPIGroups_RoleGates(t *testing.T) {
	f := newAPIFixture(t, nil)
	admin := f.token(t, identity.RoleAdmin)
	manager := f.token(t, identity.RoleManager)
	staff := f.token(t, identity.RoleStaff)

	item := map[string]any{"name": "Edge Router", "category": "router", "stock_level": 10, "reorder_point": 2}

	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, "/api/v1/inventory", staff, item).Code)
	itemID := createdID(t, f.call(t, http.MethodPost, "/api/v1/inventory", manager, item))

	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPut, "/api/v1/inventory/"+itemID, staff, item).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodPut, "/api/v1/inventory/"+itemID, manager, item).Code)

	sale := map[string]any{"transaction_type": "sale", "quantity": 1}
	assert.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/v1/inventory/"+itemID+"/transactions", staff, sale).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/v1/inventory/"+itemID+"/transactions", staff, nil).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/v1/inventory/stats/overview", staff, nil).Code)

	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, "/api/v1/inventory/reports", staff, nil).Code)
	w := f.call(t, http.MethodPost, "/api/v1/inventory/reports", manager, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var report struct {
		Data inventoryapp.ReportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodGet, report.Data.URL, staff, nil).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, report.Data.URL, manager, nil).Code)

	supplier := map[string]any{"name": "Northwind"}
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, "/api/v1/suppliers", staff, supplier).Code)
	supplierID := createdID(t, f.call(t, http.MethodPost, "/api/v1/suppliers", manager, supplier))

	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, "/api/v1/suppliers/"+supplierID+"/orders", staff, map[string]any{}).Code)
	orderID := createdID(t, f.call(t, http.MethodPost, "/api/v1/suppliers/"+supplierID+"/orders", manager, map[string]any{}))
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPut, "/api/v1/suppliers/orders/"+orderID, staff, map[string]any{"status": "shipped"}).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodPut, "/api/v1/suppliers/orders/"+orderID, manager, map[string]any{"status": "shipped"}).Code)

	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodDelete, "/api/v1/inventory/"+itemID, manager, nil).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodDelete, "/api/v1/inventory/"+itemID, admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodDelete, "/api/v1/suppliers/"+supplierID, manager, nil).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodDelete, "/api/v1/suppliers/"+supplierID, admin, nil).Code)

	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodGet, "/api/v1/auth/users", manager, nil).Code)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/v1/auth/users", admin, nil).Code)
}

func TestAPIGroups_QueryTokenOnlyOnStream(t *testing.T) {
	f := newAPIFixture(t, nil)
	staff := f.token(t, identity.RoleStaff)

	w := f.call(t, http.MethodGet, "/api/v1/inventory?token="+staff, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	srv := httptest.NewServer(f.engine)
	defer srv.Close()
	url := "ws" + srv.URL[len("http"):] + NotificationStreamPath

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+staff, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case userID := <-f.stream.served:
		assert.Equal(t, f.users[identity.RoleStaff].ID, userID)
	case <-time.After(2 * time.Second):
		t.Fatal("stream was not served")
	}
}

func TestAPIGroups_AuthRateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 2)
	t.Cleanup(limiter.Stop)
	f := newAPIFixture(t, limiter)

	body := map[string]any{"username": "staff1", "password": "wrong"}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, f.call(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, f.call(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)

	// Authenticated routes are not throttled by the auth limiter
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/v1/auth/profile", f.token(t, identity.RoleStaff), nil).Code)
}
