package api

import (
	"net/http"

	"github.com/tkrause/textgen-gateway/internal/logging"
	"github.com/tkrause/textgen-gateway/internal/server"
)

// handle runs a handler body under the uniform execution contract: on
// success the result is wrapped in a success envelope, on any error the
// failure is logged with its request context and converted to a generic 500
// envelope carrying only the error message.
func handle(w http.ResponseWriter, r *http.Request, logger *logging.Logger, component string, fn func() (any, error)) {
	clientInfo := server.GetClientInfo(r.Context())

	result, err := fn()
	if err != nil {
		logger.Error("controller error", &logging.Options{
			Context:   component,
			Error:     err.Error(),
			RequestID: server.GetRequestID(r.Context()),
			URL:       r.URL.Path,
			Method:    r.Method,
			Metadata: map[string]any{
				"query": r.URL.RawQuery,
			},
		})
		WriteError(w, http.StatusInternalServerError, err.Error(), clientInfo)
		return
	}

	WriteSuccess(w, result, clientInfo)
}
