package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tims/backend/internal/interfaces/http/dto"
)

type transactionBody struct {
	TransactionType string `json:"transaction_type" binding:"required,oneof=purchase sale adjustment return"`
	Quantity        int    `json:"quantity" binding:"transaction_quantity"`
	Notes           string `json:"notes" binding:"max=500"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req transactionBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestTransactionQuantityRule(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"positive sale", `{"transaction_type":"sale","quantity":3}`, http.StatusOK},
		{"zero sale", `{"transaction_type":"sale","quantity":0}`, http.StatusBadRequest},
		{"negative purchase", `{"transaction_type":"purchase","quantity":-2}`, http.StatusBadRequest},
		{"negative adjustment", `{"transaction_type":"adjustment","quantity":-7}`, http.StatusOK},
		{"zero adjustment", `{"transaction_type":"adjustment","quantity":0}`, http.StatusBadRequest},
		{"missing quantity", `{"transaction_type":"return"}`, http.StatusBadRequest},
		{"largest purchase", `{"transaction_type":"purchase","quantity":2147483647}`, http.StatusOK},
		{"purchase beyond int32", `{"transaction_type":"purchase","quantity":2147483648}`, http.StatusBadRequest},
		{"purchase of max int64", `{"transaction_type":"purchase","quantity":9223372036854775807}`, http.StatusBadRequest},
		{"adjustment below -int32", `{"transaction_type":"adjustment","quantity":-2147483648}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	router := newValidationRouter()

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"transaction_type":"gift","quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Request validation failed", resp.Error.Message)
	require.Len(t, resp.Error.Details, 2)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Must be one of: purchase sale adjustment return", fields["transaction_type"])
	assert.Contains(t, fields, "quantity")
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
