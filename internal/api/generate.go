package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tkrause/textgen-gateway/internal/logging"
	"github.com/tkrause/textgen-gateway/internal/usecase"
	"github.com/tkrause/textgen-gateway/internal/validate"
)

// maxBodySize caps the generate request body at 1MB.
const maxBodySize = 1 << 20

// generateRequest is the typed request body for text generation. Temperature
// is a pointer so an explicit 0 survives as a value distinct from unset.
type generateRequest struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// GenerateHandler serves the authenticated text-generation endpoint.
type GenerateHandler struct {
	logger  *logging.Logger
	usecase *usecase.GenerateText
}

func NewGenerateHandler(logger *logging.Logger, uc *usecase.GenerateText) *GenerateHandler {
	return &GenerateHandler{logger: logger, usecase: uc}
}

// HandleGenerate validates the request body and runs the text-generation use
// case. All failures, including missing parameters, surface as generic 500
// envelopes; only authentication gets its own status.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.logger, "TextGenerationController", func() (any, error) {
		var body generateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}

		validation := validate.Params(map[string]any{
			"prompt": body.Prompt,
		}, []string{"prompt"})
		if !validation.IsValid {
			return nil, fmt.Errorf("missing parameters: %s", strings.Join(validation.Missing, ", "))
		}

		result, err := h.usecase.Execute(r.Context(), usecase.TextGenerationRequest{
			Prompt:      body.Prompt,
			Model:       body.Model,
			Temperature: body.Temperature,
			// Forwarded verbatim to the upstream service.
			AuthToken: r.Header.Get("Authorization"),
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}
