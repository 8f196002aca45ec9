package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tims/backend/internal/infrastructure/logger"
	"github.com/tims/backend/internal/interfaces/http/dto"
)

// DatabasePinger reports database reachability
type DatabasePinger interface {
	Ping() error
}

// CachePinger reports cache reachability and which backend is in use
type CachePinger interface {
	Ping(ctx context.Context) error
	Backend() string
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	db        DatabasePinger
	cache     CachePinger
	name      string
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db DatabasePinger, cache CachePinger, name, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		cache:     cache,
		name:      name,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Health handles GET /health. A database outage makes the service
// unhealthy; a cache outage only degrades it.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	log := logger.FromContext(ctx)

	resp := HealthResponse{Status: "healthy", Database: "connected", Cache: "none"}
	status := http.StatusOK

	if err := h.db.Ping(); err != nil {
		log.Error("Health check: database unreachable", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = h.cache.Backend()
		if err := h.cache.Ping(ctx); err != nil {
			log.Warn("Health check: cache unreachable", zap.Error(err))
			resp.Cache = h.cache.Backend() + " (unavailable)"
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	c.JSON(status, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo handles GET /api/v1/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}
