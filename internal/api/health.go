package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tkrause/textgen-gateway/internal/logging"
	"github.com/tkrause/textgen-gateway/internal/memutil"
	"github.com/tkrause/textgen-gateway/internal/version"
)

// HealthHandler serves the unauthenticated health endpoints.
type HealthHandler struct {
	logger      *logging.Logger
	environment string
}

func NewHealthHandler(logger *logging.Logger, environment string) *HealthHandler {
	return &HealthHandler{logger: logger, environment: environment}
}

type statusResponse struct {
	Status      string        `json:"status"`
	Version     string        `json:"version"`
	Timestamp   string        `json:"timestamp"`
	MemoryUsage memutil.Usage `json:"memoryUsage"`
	Environment string        `json:"environment"`
}

// HandlePing is the bare liveness probe. It bypasses the envelope.
func (h *HealthHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "OK",
		"memoryUsage": memutil.Snapshot(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleStatus reports version, environment and memory usage in an envelope.
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.logger, "HealthController", func() (any, error) {
		return statusResponse{
			Status:      "OK",
			Version:     version.Version,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			MemoryUsage: memutil.Snapshot(),
			Environment: h.environment,
		}, nil
	})
}
