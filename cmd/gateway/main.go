package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/tkrause/textgen-gateway/internal/api"
	"github.com/tkrause/textgen-gateway/internal/audit"
	"github.com/tkrause/textgen-gateway/internal/auth"
	"github.com/tkrause/textgen-gateway/internal/config"
	"github.com/tkrause/textgen-gateway/internal/logging"
	"github.com/tkrause/textgen-gateway/internal/memutil"
	"github.com/tkrause/textgen-gateway/internal/server"
	"github.com/tkrause/textgen-gateway/internal/telemetry"
	"github.com/tkrause/textgen-gateway/internal/tokens"
	"github.com/tkrause/textgen-gateway/internal/upstream/ollama"
	"github.com/tkrause/textgen-gateway/internal/usecase"
	"github.com/tkrause/textgen-gateway/internal/validate"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("GATEWAY_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Audit sink is optional; the gateway runs without it.
	var sink logging.AuditSink
	if cfg.Logging.Audit.Enabled {
		store, err := audit.Open(cfg.Logging.Audit.Path)
		if err != nil {
			log.Fatalf("Failed to open audit store: %v", err)
		}
		defer store.Close()
		sink = store
	}

	logger := logging.New(cfg.Logging, os.Stdout, sink)

	shutdownTracer, err := telemetry.InitTracer("textgen-gateway", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", &logging.Options{
				Context: "Application",
				Error:   err.Error(),
			})
		}
	}()

	if cfg.Auth.Mode != config.AuthModeNone && !validate.Credentials(cfg.Auth) {
		logger.Warn("auth mode is configured but credentials are missing or incomplete; requests will be rejected", &logging.Options{
			Context:  "Application",
			Metadata: map[string]any{"authMode": cfg.Auth.Mode},
		})
	}

	validator := auth.NewValidator(cfg.Auth)
	client := ollama.NewClient(logger, ollama.WithBaseURL(cfg.Upstream.URL))
	generate := usecase.NewGenerateText(client, logger, tokens.NewCounter(), cfg.Upstream.Model)

	health := api.NewHealthHandler(logger, cfg.Server.Environment)
	generateHandler := api.NewGenerateHandler(logger, generate)

	srv := server.New(cfg.Server.Port, logger)
	srv.Router.Route("/api", func(r chi.Router) {
		r.Get("/health/ping", health.HandlePing)
		r.Get("/health/status", health.HandleStatus)
		r.Group(func(r chi.Router) {
			r.Use(api.RequireAuth(validator, logger))
			r.Post("/generate", generateHandler.HandleGenerate)
		})
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.System("Server running", &logging.Options{
		Context: "Application",
		Metadata: map[string]any{
			"port":        cfg.Server.Port,
			"environment": cfg.Server.Environment,
			"authMode":    cfg.Auth.Mode,
			"memoryUsage": memutil.Snapshot(),
		},
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("shutdown signal received, starting graceful shutdown", &logging.Options{
			Context:  "Application",
			Metadata: map[string]any{"signal": sig.String()},
		})
		// No hard deadline: in-flight requests run to completion.
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("graceful shutdown failed", &logging.Options{
				Context: "Application",
				Error:   err.Error(),
			})
		}
	}
}
