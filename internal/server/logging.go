package server

import (
	"net/http"
	"time"

	"github.com/tkrause/textgen-gateway/internal/logging"
)

// AccessLogMiddleware logs every HTTP request through the gateway logger,
// capturing method, path, status code and duration on completion.
func AccessLogMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := GetRequestID(r.Context())

			logger.Debug("request started", &logging.Options{
				Category:  "HTTP",
				RequestID: requestID,
				URL:       r.URL.Path,
				Method:    r.Method,
			})

			wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info("request completed", &logging.Options{
				Category:  "HTTP",
				RequestID: requestID,
				URL:       r.URL.Path,
				Method:    r.Method,
				Duration:  time.Since(start),
				Metadata: map[string]any{
					"status":     wrapped.statusCode,
					"remoteAddr": r.RemoteAddr,
				},
			})
		})
	}
}

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards Flush to the underlying ResponseWriter if it supports
// http.Flusher.
func (rw *statusResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
