package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func findSpan(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, span := range spans {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false, ServiceName: "test-service"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_AttributesAndErrors(t *testing.T) {
	sr := setupTestTracer(t)
	svc := newTestJWTService(time.Minute)
	userID, token := issue(t, svc, "manager")

	router := gin.New()
	router.Use(RequestID(), Tracing(TracingConfig{Enabled: true, ServiceName: "test-service"}), SpanErrorMarker())
	router.Use(JWTAuthMiddleware(svc), TracingAttributeInjector())
	router.GET("/inventory/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})

	req := httptest.NewRequest(http.MethodGet, "/inventory/42", nil)
	req.Header.Set(RequestIDHeader, "req-trace")
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	span := findSpan(sr.Ended(), "GET /inventory/:id")
	require.NotNil(t, span, "HTTP span not found")

	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "Not Found", span.Status().Description)

	v, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace", v.AsString())

	v, ok = spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, userID.String(), v.AsString())

	v, ok = spanAttr(span, "user_role")
	require.True(t, ok)
	assert.Equal(t, "manager", v.AsString())
}

func TestSpanErrorMarker_ServerError(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: true, ServiceName: "test-service"}), SpanErrorMarker())
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	failed := findSpan(sr.Ended(), "GET /fail")
	require.NotNil(t, failed)
	assert.Equal(t, "Internal Server Error", failed.Status().Description)

	ok := findSpan(sr.Ended(), "GET /ok")
	require.NotNil(t, ok)
	assert.NotEqual(t, codes.Error, ok.Status().Code)
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(TracingAttributeInjector(), SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
