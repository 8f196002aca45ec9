package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tims/backend/internal/interfaces/http/dto"
)

// Envelope mirrors dto.Response with a typed payload.
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// DoJSON sends a JSON request to h. An empty token sends no Authorization
// header.
func DoJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, ToJSONReader(t, body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope decodes a response body into an Envelope.
func DecodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// ToJSONReader marshals v. A nil v yields an empty body.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	if v == nil {
		return http.NoBody
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}
