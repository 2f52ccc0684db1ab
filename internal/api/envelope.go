// Package api contains the HTTP handlers and the uniform response envelope
// returned for every API response.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tkrause/textgen-gateway/internal/domain"
)

// Envelope is the uniform success/error wrapper. Data and Error are mutually
// exclusive; an envelope is constructed exactly once per request at the
// boundary.
type Envelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Error      string             `json:"error,omitempty"`
	Timestamp  string             `json:"timestamp"`
	ClientInfo *domain.ClientInfo `json:"clientInfo,omitempty"`
}

// WriteSuccess writes a 200 envelope wrapping data.
func WriteSuccess(w http.ResponseWriter, data any, clientInfo *domain.ClientInfo) {
	writeEnvelope(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		ClientInfo: clientInfo,
	})
}

// WriteError writes an error envelope with the given status code. The message
// is the error's description only; internal error types and stack traces stay
// behind this boundary.
func WriteError(w http.ResponseWriter, status int, message string, clientInfo *domain.ClientInfo) {
	writeEnvelope(w, status, Envelope{
		Success:    false,
		Error:      message,
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		ClientInfo: clientInfo,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}
