// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// normalizePath converts paths with dynamic segments to route patterns to prevent
// cardinality explosion in metrics. This maps paths like /papers/123 to /papers/{id}.
func normalizePath(path string) string {
	// Exact matches for static routes (no normalization needed)
	staticRoutes := map[string]bool{
		"/":                       true,
		"/papers":                 true,
		"/papers/feed":            true,
		"/hubs":                   true,
		"/bookmarks":              true,
		"/moderation/flags":       true,
		"/moderation/flags/count": true,
		"/health":                 true,
		"/ready":                  true,
		"/metrics":                true,
	}

	if staticRoutes[path] {
		return path
	}

	// Pattern-based normalization for dynamic routes

	// /papers/{id}/... patterns
	if strings.HasPrefix(path, "/papers/") {
		parts := strings.Split(path, "/")
		if len(parts) >= 3 {
			// /papers/{id}/upvote, /papers/{id}/flag, /papers/{id}/threads, ...
			if len(parts) == 4 {
				switch parts[3] {
				case "upvote", "downvote", "user_vote", "flag", "threads", "figures", "bookmark":
					return "/papers/{id}/" + parts[3]
				}
			}
			// /papers/{id}
			if len(parts) == 3 && parts[2] != "" {
				return "/papers/{id}"
			}
		}
	}

	// /threads/{id}/comments
	if strings.HasPrefix(path, "/threads/") {
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[3] == "comments" {
			return "/threads/{id}/comments"
		}
		if len(parts) == 3 && parts[2] != "" {
			return "/threads/{id}"
		}
	}

	// /hubs/{id}
	if strings.HasPrefix(path, "/hubs/") {
		parts := strings.Split(path, "/")
		if len(parts) == 3 && parts[2] != "" {
			return "/hubs/{id}"
		}
	}

	// /moderation/flags/{id}/remove or /dismiss
	if strings.HasPrefix(path, "/moderation/flags/") {
		parts := strings.Split(path, "/")
		if len(parts) == 5 && (parts[4] == "remove" || parts[4] == "dismiss") {
			return "/moderation/flags/{id}/" + parts[4]
		}
		if len(parts) == 4 && parts[3] != "" {
			return "/moderation/flags/{id}"
		}
	}

	// Fallback: return as-is for unknown patterns
	// This ensures we don't accidentally break metrics for new routes
	return path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

// WriteHeader captures the status code before writing it.
func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// newMetricsResponseWriter creates a new metricsResponseWriter with default 200 status.
func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// HTTPMetrics is a middleware that records HTTP request metrics.
// It captures duration, request/response sizes, and request counts.
// Health check endpoints (/health, /ready) are excluded from metrics to avoid cardinality issues.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exclude health check endpoints from metrics
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			// Wrap response writer to capture status and size
			mrw := newMetricsResponseWriter(w)

			// Get request size from Content-Length header
			requestSize := int64(0)
			if contentLength := r.Header.Get("Content-Length"); contentLength != "" {
				if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil {
					requestSize = size
				}
			}

			// Call the next handler
			next.ServeHTTP(mrw, r)

			// Calculate duration in seconds
			duration := time.Since(start).Seconds()

			// Normalize path to prevent cardinality explosion
			normalizedPath := normalizePath(r.URL.Path)

			// Record metrics
			metrics.ObserveHTTPRequest(
				r.Method,
				normalizedPath,
				strconv.Itoa(mrw.statusCode),
				duration,
				requestSize,
				mrw.size,
			)
		})
	}
}
