// Package usecase contains the text-generation use case orchestrating a
// single request against the upstream inference service.
package usecase

import (
	"context"
	"errors"

	"github.com/tkrause/textgen-gateway/internal/logging"
	"github.com/tkrause/textgen-gateway/internal/tokens"
	"github.com/tkrause/textgen-gateway/internal/upstream/ollama"
)

const (
	defaultModel       = "gemma2:7b"
	defaultTemperature = 0.7
)

var (
	// ErrPromptRequired is returned when the request prompt is empty. No
	// upstream call is made.
	ErrPromptRequired = errors.New("prompt is required")

	// ErrEmptyUpstreamResponse is returned when the upstream call failed
	// or produced no generated content.
	ErrEmptyUpstreamResponse = errors.New("no response received from the upstream inference API")
)

// TextGenerationRequest is a single text-generation request. Temperature is
// a pointer so an explicit zero can be told apart from unset.
type TextGenerationRequest struct {
	Prompt      string
	Model       string
	Temperature *float64
	AuthToken   string
}

// TextGenerationResult is the terminal success value of the pipeline.
type TextGenerationResult struct {
	GeneratedText string `json:"generatedText"`
	Model         string `json:"model"`
	Prompt        string `json:"prompt"`
}

// ChatClient is the upstream inference client. A nil response signals
// failure; the client never returns a transport error directly.
type ChatClient interface {
	Chat(ctx context.Context, prompt string, opts ollama.ChatOptions) *ollama.ChatResponse
}

// GenerateText orchestrates one text-generation request: applies defaults,
// calls the upstream client, and maps the outcome to a result or error.
type GenerateText struct {
	client  ChatClient
	logger  *logging.Logger
	counter *tokens.Counter
	model   string
}

// NewGenerateText builds the use case. model overrides the built-in default
// model identifier when non-empty.
func NewGenerateText(client ChatClient, logger *logging.Logger, counter *tokens.Counter, model string) *GenerateText {
	if model == "" {
		model = defaultModel
	}
	return &GenerateText{client: client, logger: logger, counter: counter, model: model}
}

// Execute runs a single text-generation request. The caller is responsible
// for logging the outcome.
func (g *GenerateText) Execute(ctx context.Context, req TextGenerationRequest) (*TextGenerationResult, error) {
	if req.Prompt == "" {
		return nil, ErrPromptRequired
	}

	model := req.Model
	if model == "" {
		model = g.model
	}
	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	// Log prompt size only, never the prompt text itself.
	promptTokens, estimated := g.counter.Count(req.Prompt)
	g.logger.Info("starting text generation", &logging.Options{
		Context: "GenerateText",
		Metadata: map[string]any{
			"model":           model,
			"promptLength":    len(req.Prompt),
			"promptTokens":    promptTokens,
			"tokensEstimated": estimated,
			"temperature":     temperature,
		},
	})

	// The upstream call is not tied to the caller's lifecycle: a client
	// disconnect does not abort an in-flight generation.
	result := g.client.Chat(context.WithoutCancel(ctx), req.Prompt, ollama.ChatOptions{
		Model:       model,
		Temperature: temperature,
		AuthToken:   req.AuthToken,
	})

	if result == nil || result.Message.Content == "" {
		return nil, ErrEmptyUpstreamResponse
	}

	return &TextGenerationResult{
		GeneratedText: result.Message.Content,
		Model:         model,
		Prompt:        req.Prompt,
	}, nil
}
