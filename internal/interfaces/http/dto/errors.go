package dto

import (
	"net/http"

	"github.com/tims/backend/internal/domain/shared"
)

// Domain error codes travel to clients unchanged
const (
	ErrCodeValidation        = shared.CodeValidation
	ErrCodeNotFound          = shared.CodeNotFound
	ErrCodeAlreadyExists     = shared.CodeAlreadyExists
	ErrCodeConflict          = shared.CodeConflict
	ErrCodeInsufficientStock = shared.CodeInsufficient
	ErrCodeInvalidState      = shared.CodeInvalidState
	ErrCodeUnauthorized      = shared.CodeUnauthorized
	ErrCodeForbidden         = shared.CodeForbidden
	ErrCodeOptimisticLock    = shared.CodeOptimisticLock
)

// Transport error codes raised by handlers and middleware
const (
	// ErrCodeInternal hides unclassified failures
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed path or query parameters
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used for malformed or forged tokens
	ErrCodeTokenInvalid = "INVALID_TOKEN"
	// ErrCodeRateLimited is used when a client exceeds its request budget
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeInsufficientStock: http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidJSON:       http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeAlreadyExists:     http.StatusConflict,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeOptimisticLock:    http.StatusConflict,
	ErrCodeInvalidState:      http.StatusConflict,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeTokenExpired:      http.StatusUnauthorized,
	ErrCodeTokenInvalid:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeRequestTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:       http.StatusTooManyRequests,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are server errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
