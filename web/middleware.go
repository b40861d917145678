package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/jyothri/ipodphotos/collect"
	"golang.org/x/time/rate"
)

// Size limit constants
const (
	ScanRequestMaxBodySize   = 1 << 20   // 1 MB
	OAuthCallbackMaxBodySize = 16 << 10  // 16 KB
)

// RequestSizeLimitMiddleware limits the size of request bodies
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware rejects requests with 429 once limiter runs out of tokens.
func RateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}
			retryAfter := 1
			if limit := float64(limiter.Limit()); limit > 0 {
				retryAfter = int(math.Ceil(1 / limit))
			}
			slog.Warn("Request rate limit exceeded",
				"remote_addr", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"limit", float64(limiter.Limit()),
				"burst", limiter.Burst())
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeErrorResponse(w, ErrorResponse{
				Error: ErrorDetail{
					Code:    "RATE_LIMITED",
					Message: "Too many requests",
					Details: map[string]interface{}{
						"retry_after_sec": retryAfter,
					},
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				},
			}, http.StatusTooManyRequests)
		})
	}
}

// handleMaxBytesError checks if an error is due to request body being too large
func handleMaxBytesError(w http.ResponseWriter, r *http.Request, err error, maxBytes int64) bool {
	if err == nil {
		return false
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || errors.Is(err, collect.ErrTooLarge) {
		slog.Warn("Request body size limit exceeded",
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
			"max_bytes", maxBytes,
			"max_human", formatBytes(maxBytes))

		writeErrorResponse(w, ErrorResponse{
			Error: ErrorDetail{
				Code:    "PAYLOAD_TOO_LARGE",
				Message: "Request body exceeds maximum allowed size",
				Details: map[string]interface{}{
					"max_size_bytes": maxBytes,
					"max_size_human": formatBytes(maxBytes),
				},
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		}, http.StatusRequestEntityTooLarge)

		return true
	}

	return false
}

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// writeErrorResponse writes a JSON error response
func writeErrorResponse(w http.ResponseWriter, errResp ErrorResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// formatBytes formats bytes into human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
