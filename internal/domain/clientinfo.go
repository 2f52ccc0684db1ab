// Package domain holds the shared request-scoped types of the gateway.
package domain

// RequestInfo describes the request line of an inbound request. Missing
// fields are substituted with the literal "unknown".
type RequestInfo struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Protocol  string `json:"protocol"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"timestamp"`
}

// ClientInfo is the caller metadata captured once per inbound request,
// before authentication, so that even rejected requests can be logged with
// client context. Immutable after creation.
type ClientInfo struct {
	ClientIP    string      `json:"clientIP"`
	ForwardedIP string      `json:"forwardedIP,omitempty"`
	RealIP      string      `json:"realIP,omitempty"`
	UserAgent   string      `json:"userAgent,omitempty"`
	RequestInfo RequestInfo `json:"requestInfo"`
}
