package api

import (
	"net/http"
	"strings"

	"github.com/ignite/discount-generator/internal/pkg/httputil"
	"github.com/ignite/discount-generator/internal/pkg/logger"
)

// respondSafeError logs the internal error and sends a sanitized JSON error
// response, so file paths and driver messages never reach the client.
func respondSafeError(w http.ResponseWriter, code int, internalErr error, publicMsg string) {
	if internalErr != nil {
		logger.Error(publicMsg, "status", code, "error", internalErr)
	}
	httputil.Error(w, code, publicMsg)
}

// safeErrorMessage maps common internal error patterns to public-safe messages.
// For 400-level errors the original message is returned.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}

	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())

	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "unknown segment"):
		return "Segment and pricing rules are out of sync"

	case strings.Contains(errStr, "redis") ||
		strings.Contains(errStr, "session"):
		return "Session storage error"

	case strings.Contains(errStr, "access denied") ||
		strings.Contains(errStr, "permission"):
		return "Access denied"

	default:
		return "An internal error occurred"
	}
}
