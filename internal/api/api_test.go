package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tkrause/textgen-gateway/internal/auth"
	"github.com/tkrause/textgen-gateway/internal/config"
	"github.com/tkrause/textgen-gateway/internal/logging"
	"github.com/tkrause/textgen-gateway/internal/server"
	"github.com/tkrause/textgen-gateway/internal/tokens"
	"github.com/tkrause/textgen-gateway/internal/upstream/ollama"
	"github.com/tkrause/textgen-gateway/internal/usecase"
)

func silentLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{}, io.Discard, nil)
}

// newTestRouter assembles the full request pipeline the way cmd/gateway does,
// with the given auth config and upstream base URL.
func newTestRouter(t *testing.T, authCfg config.AuthConfig, upstreamURL string) *chi.Mux {
	t.Helper()
	logger := silentLogger()

	validator := auth.NewValidator(authCfg)
	client := ollama.NewClient(logger, ollama.WithBaseURL(upstreamURL))
	generate := usecase.NewGenerateText(client, logger, tokens.NewCounter(), "")

	health := NewHealthHandler(logger, "test")
	generateHandler := NewGenerateHandler(logger, generate)

	r := chi.NewRouter()
	r.Use(server.RequestIDMiddleware)
	r.Use(server.ClientInfoMiddleware)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health/ping", health.HandlePing)
		r.Get("/health/status", health.HandleStatus)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(validator, logger))
			r.Post("/generate", generateHandler.HandleGenerate)
		})
	})
	return r
}

func stubUpstream(t *testing.T, content string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollama.ChatResponse{Message: ollama.Message{Content: content}})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

// checkEnvelope asserts the invariant: data and error are mutually exclusive
// and timestamp is always present.
func checkEnvelope(t *testing.T, body map[string]any, wantSuccess bool) {
	t.Helper()
	success, _ := body["success"].(bool)
	if success != wantSuccess {
		t.Errorf("success = %v, want %v", success, wantSuccess)
	}
	_, hasData := body["data"]
	_, hasError := body["error"]
	if hasData && hasError {
		t.Error("envelope carries both data and error")
	}
	if wantSuccess && !hasData {
		t.Error("success envelope missing data")
	}
	if !wantSuccess && !hasError {
		t.Error("error envelope missing error")
	}
	ts, _ := body["timestamp"].(string)
	if ts == "" {
		t.Error("envelope missing timestamp")
	} else if _, err := time.Parse("2006-01-02T15:04:05.000Z", ts); err != nil {
		t.Errorf("timestamp %q not millisecond-precision UTC: %v", ts, err)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	ts := stubUpstream(t, "hello")
	router := newTestRouter(t, config.AuthConfig{Mode: config.AuthModeNone}, ts.URL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{"prompt":"hi"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	checkEnvelope(t, body, true)

	data, _ := body["data"].(map[string]any)
	if data["generatedText"] != "hello" {
		t.Errorf("generatedText = %v, want hello", data["generatedText"])
	}
	if data["model"] != "gemma2:7b" {
		t.Errorf("model = %v, want resolved default", data["model"])
	}
	if data["prompt"] != "hi" {
		t.Errorf("prompt = %v, want original", data["prompt"])
	}
	if body["clientInfo"] == nil {
		t.Error("envelope missing clientInfo")
	}
}

func TestGenerateMissingPromptIsGeneric500(t *testing.T) {
	ts := stubUpstream(t, "unused")
	router := newTestRouter(t, config.AuthConfig{Mode: config.AuthModeNone}, ts.URL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	checkEnvelope(t, body, false)
	if errMsg, _ := body["error"].(string); !strings.Contains(errMsg, "prompt") {
		t.Errorf("error = %q, want missing-parameter reason", errMsg)
	}
}

func TestGenerateUpstreamFailureIs500(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)
	router := newTestRouter(t, config.AuthConfig{Mode: config.AuthModeNone}, ts.URL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{"prompt":"hi"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	checkEnvelope(t, decodeEnvelope(t, rec), false)
}

func TestGenerateInvalidBodyIs500(t *testing.T) {
	ts := stubUpstream(t, "unused")
	router := newTestRouter(t, config.AuthConfig{Mode: config.AuthModeNone}, ts.URL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{broken`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	checkEnvelope(t, decodeEnvelope(t, rec), false)
}

func TestGenerateStaticAuth(t *testing.T) {
	ts := stubUpstream(t, "hello")
	authCfg := config.AuthConfig{Mode: config.AuthModeStatic, StaticKey: "sekrit"}
	router := newTestRouter(t, authCfg, ts.URL)

	t.Run("valid key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{"prompt":"hi"}`))
		req.Header.Set("Authorization", "Bearer sekrit")
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{"prompt":"hi"}`))
		req.Header.Set("Authorization", "Bearer wrong")
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		body := decodeEnvelope(t, rec)
		checkEnvelope(t, body, false)
		if errMsg, _ := body["error"].(string); !strings.HasPrefix(errMsg, "Unauthorized") {
			t.Errorf("error = %q, want Unauthorized prefix", errMsg)
		}
		if strings.Contains(rec.Body.String(), "wrong") {
			t.Error("401 response echoes the credential")
		}
	})

	t.Run("missing credential", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{"prompt":"hi"}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestGenerateForwardsAuthHeaderUpstream(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ollama.ChatResponse{Message: ollama.Message{Content: "ok"}})
	}))
	t.Cleanup(ts.Close)

	authCfg := config.AuthConfig{Mode: config.AuthModeStatic, StaticKey: "sekrit"}
	router := newTestRouter(t, authCfg, ts.URL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	router.ServeHTTP(rec, req)

	if gotAuth != "Bearer sekrit" {
		t.Errorf("upstream Authorization = %q, want forwarded verbatim", gotAuth)
	}
}

func TestHealthPingBypassesEnvelope(t *testing.T) {
	router := newTestRouter(t, config.AuthConfig{Mode: config.AuthModeNone}, "http://localhost:1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "OK" {
		t.Errorf("status = %v, want OK", body["status"])
	}
	if body["memoryUsage"] == nil {
		t.Error("ping missing memoryUsage")
	}
	if _, hasEnvelope := body["success"]; hasEnvelope {
		t.Error("ping should not be envelope-wrapped")
	}
}

func TestHealthStatus(t *testing.T) {
	router := newTestRouter(t, config.AuthConfig{Mode: config.AuthModeNone}, "http://localhost:1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	checkEnvelope(t, body, true)

	data, _ := body["data"].(map[string]any)
	if data["status"] != "OK" {
		t.Errorf("status = %v, want OK", data["status"])
	}
	if data["version"] == nil || data["version"] == "" {
		t.Error("status missing version")
	}
	if data["environment"] != "test" {
		t.Errorf("environment = %v, want test", data["environment"])
	}
	if data["memoryUsage"] == nil {
		t.Error("status missing memoryUsage")
	}
}

func TestHealthEndpointsRequireNoAuth(t *testing.T) {
	// Static auth configured, but health stays open.
	authCfg := config.AuthConfig{Mode: config.AuthModeStatic, StaticKey: "sekrit"}
	router := newTestRouter(t, authCfg, "http://localhost:1")

	for _, path := range []string{"/api/health/ping", "/api/health/status"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200 without credentials", path, rec.Code)
		}
	}
}

func TestWriteErrorEnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusInternalServerError, "boom", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	checkEnvelope(t, body, false)
	if body["error"] != "boom" {
		t.Errorf("error = %v, want boom", body["error"])
	}
	if _, hasClientInfo := body["clientInfo"]; hasClientInfo {
		t.Error("nil clientInfo should be omitted")
	}
}
