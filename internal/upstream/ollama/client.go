// Package ollama is a thin HTTP client for a local Ollama-compatible chat
// endpoint. Transport failures and non-2xx responses are soft failures: the
// client logs them and returns nil, and callers treat absence of a response
// as a single unified failure mode.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tkrause/textgen-gateway/internal/logging"
)

const (
	defaultBaseURL = "http://localhost:11434"

	// systemPrompt is the fixed system instruction sent with every chat
	// request.
	systemPrompt = "You are a helpful assistant who gives clear and precise answers."
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the upstream request body.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

// ChatResponse is the upstream response body. Only the generated message is
// interpreted; the rest of the payload is passed through unmodified.
type ChatResponse struct {
	Message Message `json:"message"`
}

// ChatOptions carries the per-call parameters.
type ChatOptions struct {
	Model       string
	Temperature float64
	// AuthToken, when set, is forwarded verbatim as the Authorization
	// header.
	AuthToken string
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client issues chat requests to the upstream inference service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a new upstream client.
func NewClient(logger *logging.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends a two-message conversation (fixed system instruction plus the
// user prompt) and returns the parsed response, or nil on any failure.
func (c *Client) Chat(ctx context.Context, prompt string, opts ChatOptions) *ChatResponse {
	reqBody := ChatRequest{
		Model: opts.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: opts.Temperature,
		Stream:      false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		c.logError("failed to marshal chat request", err)
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		c.logError("failed to create chat request", err)
		return nil
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if opts.AuthToken != "" {
		httpReq.Header.Set("Authorization", opts.AuthToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logError("upstream chat request failed", err)
		return nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logError("failed to read upstream response", err)
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("upstream chat call failed", &logging.Options{
			Context: "OllamaClient",
			Error:   fmt.Sprintf("status %d", resp.StatusCode),
			Metadata: map[string]any{
				"model":  opts.Model,
				"status": resp.StatusCode,
			},
		})
		return nil
	}

	var result ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		c.logError("failed to unmarshal upstream response", err)
		return nil
	}

	return &result
}

func (c *Client) logError(msg string, err error) {
	c.logger.Error(msg, &logging.Options{
		Context: "OllamaClient",
		Error:   err.Error(),
	})
}
