package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/interfaces/http/handler"
	"github.com/tims/backend/internal/interfaces/http/middleware"
)

// NotificationStreamPath is the only route that accepts ?token= auth,
// since browsers cannot set headers on a websocket handshake
const NotificationStreamPath = "/api/v1/notifications/ws"

var (
	admin   = string(identity.RoleAdmin)
	manager = string(identity.RoleManager)
	staff   = string(identity.RoleStaff)
)

// Handlers bundles the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth         *handler.AuthHandler
	Inventory    *handler.InventoryHandler
	Supplier     *handler.SupplierHandler
	Notification *handler.NotificationHandler
}

// APIConfig carries what the API groups need besides the handlers
type APIConfig struct {
	Tokens middleware.TokenValidator
	// AuthLimiter throttles register and login; nil disables it
	AuthLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// APIGroups declares every versioned route group with its role gates
func APIGroups(h Handlers, cfg APIConfig) []RouteRegistrar {
	authenticated := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			Validator:       cfg.Tokens,
			QueryTokenPaths: []string{NotificationStreamPath},
			Logger:          cfg.Logger,
		}),
		middleware.TracingAttributeInjector(),
	}

	throttled := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.AuthLimiter == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{middleware.RateLimit(cfg.AuthLimiter), next}
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", throttled(h.Auth.Register)...)
	authRoutes.POST("/login", throttled(h.Auth.Login)...)
	account := authRoutes.Group("account", "").Use(authenticated...)
	account.GET("/profile", h.Auth.GetProfile)
	account.PUT("/profile", h.Auth.UpdateProfile)
	account.PUT("/change-password", h.Auth.ChangePassword)
	account.GET("/users", middleware.RequireRole(admin), h.Auth.ListUsers)

	inventoryRoutes := NewDomainGroup("inventory", "/inventory").Use(authenticated...)
	inventoryRoutes.GET("", h.Inventory.List)
	inventoryRoutes.POST("", middleware.RequireRole(admin, manager), h.Inventory.Create)
	inventoryRoutes.GET("/stats/overview", h.Inventory.Stats)
	inventoryRoutes.POST("/reports", middleware.RequireRole(admin, manager), h.Inventory.ExportReport)
	inventoryRoutes.GET("/reports/*key", middleware.RequireRole(admin, manager), h.Inventory.DownloadReport)
	inventoryRoutes.GET("/:id", h.Inventory.Get)
	inventoryRoutes.PUT("/:id", middleware.RequireRole(admin, manager), h.Inventory.Update)
	inventoryRoutes.DELETE("/:id", middleware.RequireRole(admin), h.Inventory.Delete)
	inventoryRoutes.GET("/:id/transactions", h.Inventory.ListTransactions)
	inventoryRoutes.POST("/:id/transactions", middleware.RequireRole(admin, manager, staff), h.Inventory.RecordTransaction)

	supplierRoutes := NewDomainGroup("suppliers", "/suppliers").Use(authenticated...)
	supplierRoutes.GET("", h.Supplier.List)
	supplierRoutes.POST("", middleware.RequireRole(admin, manager), h.Supplier.Create)
	supplierRoutes.PUT("/orders/:orderId", middleware.RequireRole(admin, manager), h.Supplier.UpdateOrderStatus)
	supplierRoutes.GET("/:id", h.Supplier.Get)
	supplierRoutes.PUT("/:id", middleware.RequireRole(admin, manager), h.Supplier.Update)
	supplierRoutes.DELETE("/:id", middleware.RequireRole(admin), h.Supplier.Delete)
	supplierRoutes.GET("/:id/orders", h.Supplier.ListOrders)
	supplierRoutes.POST("/:id/orders", middleware.RequireRole(admin, manager), h.Supplier.CreateOrder)

	notificationRoutes := NewDomainGroup("notifications", "/notifications").Use(authenticated...)
	notificationRoutes.GET("", h.Notification.List)
	notificationRoutes.GET("/unread", h.Notification.UnreadCount)
	notificationRoutes.GET("/ws", h.Notification.Stream)
	notificationRoutes.PUT("/read/all", h.Notification.MarkAllRead)
	notificationRoutes.PUT("/:id/read", h.Notification.MarkRead)
	notificationRoutes.DELETE("/:id", h.Notification.Delete)

	return []RouteRegistrar{authRoutes, inventoryRoutes, supplierRoutes, notificationRoutes}
}

// SystemRoutes mounts the unversioned operational endpoints
func SystemRoutes(engine *gin.Engine, system *handler.SystemHandler, metrics gin.HandlerFunc) {
	engine.GET("/health", system.Health)
	engine.GET("/api/v1/system/info", system.GetSystemInfo)
	if metrics != nil {
		engine.GET("/metrics", metrics)
	}
}
