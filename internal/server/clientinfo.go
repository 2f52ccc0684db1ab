package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/tkrause/textgen-gateway/internal/domain"
)

const clientInfoKey contextKey = "client_info"

// ClientInfoMiddleware captures caller metadata for every request and
// attaches it to the context. It runs before authentication so rejected
// requests still carry client context.
func ClientInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := CollectClientInfo(r)
		ctx := context.WithValue(r.Context(), clientInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CollectClientInfo derives a ClientInfo deterministically from the request.
// Request-line fields default to "unknown"; the optional header fields stay
// empty when absent.
func CollectClientInfo(r *http.Request) *domain.ClientInfo {
	return &domain.ClientInfo{
		ClientIP:    clientIP(r.RemoteAddr),
		ForwardedIP: r.Header.Get("X-Forwarded-For"),
		RealIP:      r.Header.Get("X-Real-Ip"),
		UserAgent:   r.Header.Get("User-Agent"),
		RequestInfo: domain.RequestInfo{
			Method:    orUnknown(r.Method),
			Path:      orUnknown(r.URL.Path),
			Protocol:  orUnknown(r.Proto),
			Hostname:  orUnknown(hostname(r.Host)),
			Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		},
	}
}

// GetClientInfo retrieves the client info from context.
// Returns nil if the middleware did not run.
func GetClientInfo(ctx context.Context) *domain.ClientInfo {
	if info, ok := ctx.Value(clientInfoKey).(*domain.ClientInfo); ok {
		return info
	}
	return nil
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return orUnknown(remoteAddr)
	}
	return orUnknown(host)
}

func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
