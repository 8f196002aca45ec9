package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDB struct{ err error }

func (s stubDB) Ping() error { return s.err }

type stubCache struct {
	backend string
	err     error
}

func (s stubCache) Ping(ctx context.Context) error { return s.err }
func (s stubCache) Backend() string                { return s.backend }

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name         string
		db           DatabasePinger
		cache        CachePinger
		expectedCode int
		expected     HealthResponse
	}{
		{
			name:         "all up",
			db:           stubDB{},
			cache:        stubCache{backend: "redis"},
			expectedCode: http.StatusOK,
			expected:     HealthResponse{Status: "healthy", Database: "connected", Cache: "redis"},
		},
		{
			name:         "in-memory cache",
			db:           stubDB{},
			cache:        stubCache{backend: "memory"},
			expectedCode: http.StatusOK,
			expected:     HealthResponse{Status: "healthy", Database: "connected", Cache: "memory"},
		},
		{
			name:         "no cache configured",
			db:           stubDB{},
			expectedCode: http.StatusOK,
			expected:     HealthResponse{Status: "healthy", Database: "connected", Cache: "none"},
		},
		{
			name:         "cache down degrades",
			db:           stubDB{},
			cache:        stubCache{backend: "redis", err: errors.New("dial tcp: refused")},
			expectedCode: http.StatusOK,
			expected:     HealthResponse{Status: "degraded", Database: "connected", Cache: "redis (unavailable)"},
		},
		{
			name:         "database down",
			db:           stubDB{err: errors.New("connection reset")},
			cache:        stubCache{backend: "memory"},
			expectedCode: http.StatusServiceUnavailable,
			expected:     HealthResponse{Status: "unhealthy", Database: "disconnected", Cache: "memory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(tt.db, tt.cache, "tims", "test")
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			h.Health(c)

			assert.Equal(t, tt.expectedCode, w.Code)
			var got HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler(stubDB{}, nil, "tims", "1.2.3")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "tims", resp.Data.Name)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.NotEmpty(t, resp.Data.Uptime)
}
