package backend

import (
	"context"
	"strings"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

// Sentinel replies. They are shown to the user as ordinary chat text.
const (
	SentinelNotLoaded  = "Error: Model not loaded"
	SentinelNoResponse = "Error: No response from AI"
	sentinelPrefix     = "Error: "
)

// PromptRenderer builds the combined prompt for one user message.
type PromptRenderer interface {
	Render(ctx context.Context, userMessage string) (string, error)
}

// Client wraps a Provider and folds every failure into a boolean (probe)
// or a reply-shaped string (generate). Nothing it does returns an error.
// It holds no readiness state: the caller keeps the id a probe matched and
// passes it back to Generate.
type Client struct {
	provider Provider
	renderer PromptRenderer
	cfg      model.BackendConfig
}

func NewClient(provider Provider, renderer PromptRenderer, cfg model.BackendConfig) *Client {
	return &Client{provider: provider, renderer: renderer, cfg: cfg}
}

// CheckAvailability reports whether modelName (empty means the default) is
// a substring of any advertised model, and returns the advertised id that
// matched. "Could not confirm" and "not found" both return false.
func (c *Client) CheckAvailability(ctx context.Context, modelName string) (string, bool) {
	if modelName == "" {
		modelName = model.DefaultModel
	}

	names, err := c.provider.ListModels(ctx)
	if err != nil {
		logx.Warn().Err(err).Str("model", modelName).Msg("Failed to reach backend")
		return "", false
	}

	for _, name := range names {
		if strings.Contains(name, modelName) {
			logx.Info().Str("model", modelName).Str("matched", name).Msg("Model is available")
			return name, true
		}
	}

	logx.Warn().Str("model", modelName).Strs("advertised", names).Msg("Model not found in backend")
	return "", false
}

// Generate asks the backend for a reply to one message using the model id
// a probe matched. It returns the generated text, or a sentinel string
// describing the failure. An empty modelName means no probe has succeeded.
func (c *Client) Generate(ctx context.Context, modelName, userPrompt string) string {
	if modelName == "" {
		logx.Warn().Msg("Model not loaded, probe the backend first")
		return SentinelNotLoaded
	}

	full, err := c.renderer.Render(ctx, userPrompt)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to render prompt")
		return sentinelPrefix + err.Error()
	}

	text, err := c.provider.Generate(ctx, GenerateRequest{
		Model:       c.requestModel(modelName),
		Prompt:      full,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		if errx.IsKind(err, errx.KindMalformed) {
			logx.Warn().Err(err).Msg(SentinelNoResponse)
			return SentinelNoResponse
		}
		logx.Warn().Err(err).Msg("Generate request failed")
		return sentinelPrefix + err.Error()
	}

	logx.Debug().Int("reply_len", len(text)).Msg("AI response ready")
	return text
}

// requestModel sends the configured name to Ollama, which resolves tags
// itself, and the advertised name to Gemini, which needs a real id.
func (c *Client) requestModel(matched string) string {
	if c.cfg.Provider == model.ProviderGemini {
		return matched
	}
	if c.cfg.Model != "" {
		return c.cfg.Model
	}
	return model.DefaultModel
}
