// Package server provides the HTTP server and the request middleware chain:
// CORS, request ID, client-info capture, access logging, panic recovery, and
// OpenTelemetry instrumentation.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tkrause/textgen-gateway/internal/logging"
)

type Server struct {
	Router *chi.Mux

	httpServer *http.Server
	logger     *logging.Logger
}

// New creates the server with the standard middleware chain applied.
// Deliberately no request timeout middleware: in-flight generations are
// allowed to run to completion.
func New(port int, logger *logging.Logger) *Server {
	r := chi.NewRouter()

	// Any origin may call the gateway; Authorization must be allowed so
	// browser clients can send bearer credentials cross-origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS", "PUT"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	r.Use(RequestIDMiddleware)
	r.Use(ClientInfoMiddleware)
	r.Use(AccessLogMiddleware(logger))
	r.Use(middleware.Recoverer)

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "textgen-gateway")
	})

	return &Server{
		Router: r,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		},
		logger: logger,
	}
}

// Start runs the server until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("starting server", &logging.Options{
		Context:  "Server",
		Metadata: map[string]any{"addr": s.httpServer.Addr},
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests
// to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
