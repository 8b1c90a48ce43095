package backend

import (
	"context"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
)

// Provider is one generation service. Implementations return errx errors:
// KindTransport/KindStatus for network or HTTP failures and KindMalformed
// when the expected field is missing.
type Provider interface {
	// ListModels returns the advertised model identifiers.
	ListModels(ctx context.Context) ([]string, error)
	// Generate runs one non-streaming completion and returns its text.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest carries the combined prompt and sampling parameters.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg model.BackendConfig) (Provider, error) {
	switch cfg.Provider {
	case model.ProviderOllama, "":
		return NewOllama(cfg)
	case model.ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, errx.Config("unknown backend provider %q", cfg.Provider)
	}
}

// Label is the human-facing service name used in status notices.
func Label(provider string) string {
	if provider == model.ProviderGemini {
		return "Gemini"
	}
	return "Ollama"
}
