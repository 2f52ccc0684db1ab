package api

import (
	"net/http"

	"github.com/tkrause/textgen-gateway/internal/auth"
	"github.com/tkrause/textgen-gateway/internal/logging"
	"github.com/tkrause/textgen-gateway/internal/server"
)

// RequireAuth validates the bearer credential and attaches the derived
// identity to the request context. Rejections short-circuit with a 401 error
// envelope before any handler logic runs. The rejection reason is logged and
// echoed, the credential never is.
func RequireAuth(validator *auth.Validator, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := validator.Validate(r.Header.Get("Authorization"))
			if err != nil {
				logger.Error("authentication error", &logging.Options{
					Context:   "AuthMiddleware",
					Error:     err.Error(),
					RequestID: server.GetRequestID(r.Context()),
				})
				WriteError(w, http.StatusUnauthorized,
					"Unauthorized: "+err.Error(), server.GetClientInfo(r.Context()))
				return
			}

			next.ServeHTTP(w, r.WithContext(server.WithIdentity(r.Context(), identity)))
		})
	}
}
