package telemetry_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tims/backend/internal/infrastructure/telemetry"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	metrics := telemetry.NewHTTPMetrics("tims-test")
	router := gin.New()
	router.Use(metrics.Middleware())
	router.GET("/api/inventory/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, path := range []string{"/api/inventory/1", "/api/inventory/2", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per route and status")

	metrics.SetWebSocketConnections(3)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `http_requests_total{endpoint="/api/inventory/:id",method="GET",service="tims-test",status="200"} 2`)
	assert.Contains(t, text, `http_requests_total{endpoint="unmatched",method="GET",service="tims-test",status="404"} 1`)
	assert.Contains(t, text, `websocket_connections{service="tims-test"} 3`)
	assert.Contains(t, text, "go_goroutines")
}
