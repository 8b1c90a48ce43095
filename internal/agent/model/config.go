package model

import (
	"time"

	errx "github.com/nekochat-companion/server/internal/core/error"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5:latest"
)

// ================ Config ================
type BackendConfig struct {
	Provider     string        `envconfig:"BACKEND_PROVIDER" default:"ollama"`
	BaseURL      string        `envconfig:"BACKEND_BASE_URL" default:"http://localhost:11434"`
	Model        string        `envconfig:"BACKEND_MODEL" default:"qwen2.5:latest"`
	Temperature  float32       `envconfig:"BACKEND_TEMPERATURE" default:"0.8"`
	TopP         float32       `envconfig:"BACKEND_TOP_P" default:"0.9"`
	MaxTokens    int           `envconfig:"BACKEND_MAX_TOKENS" default:"150"`
	SystemPrompt string        `envconfig:"BACKEND_SYSTEM_PROMPT"`
	Timeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"0s"`
	APIKey       string        `envconfig:"GEMINI_API_KEY"`
}

type ConversationConfig struct {
	ReplyDelayMin time.Duration `envconfig:"CONVERSATION_REPLY_DELAY_MIN" default:"500ms"`
	ReplyDelayMax time.Duration `envconfig:"CONVERSATION_REPLY_DELAY_MAX" default:"1500ms"`
	WelcomeDelay  time.Duration `envconfig:"CONVERSATION_WELCOME_DELAY" default:"100ms"`
	OverlapPolicy string        `envconfig:"CONVERSATION_OVERLAP_POLICY" default:"queue"`
	QueueSize     int           `envconfig:"CONVERSATION_QUEUE_SIZE" default:"8"`
	EventBuffer   int           `envconfig:"CONVERSATION_EVENT_BUFFER" default:"64"`
}

// DefaultBackendConfig mirrors the envconfig defaults for callers that do
// not load from the environment (tests, embedding).
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Provider:    ProviderOllama,
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: 0.8,
		TopP:        0.9,
		MaxTokens:   150,
	}
}

// DefaultConversationConfig mirrors the envconfig defaults.
func DefaultConversationConfig() ConversationConfig {
	return ConversationConfig{
		ReplyDelayMin: 500 * time.Millisecond,
		ReplyDelayMax: 1500 * time.Millisecond,
		WelcomeDelay:  100 * time.Millisecond,
		OverlapPolicy: string(OverlapQueue),
		QueueSize:     8,
		EventBuffer:   64,
	}
}

func (c BackendConfig) Validate() error {
	switch c.Provider {
	case ProviderOllama:
		if c.BaseURL == "" {
			return errx.Config("backend base url is empty")
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return errx.Config("gemini provider requires GEMINI_API_KEY")
		}
	default:
		return errx.Config("unknown backend provider %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return errx.Config("temperature %.2f outside [0,1]", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return errx.Config("top_p %.2f outside [0,1]", c.TopP)
	}
	if c.MaxTokens <= 0 {
		return errx.Config("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout < 0 {
		return errx.Config("timeout must not be negative")
	}
	return nil
}

func (c ConversationConfig) Validate() error {
	if c.ReplyDelayMin < 0 || c.ReplyDelayMax < c.ReplyDelayMin {
		return errx.Config("reply delay window [%s, %s] is invalid", c.ReplyDelayMin, c.ReplyDelayMax)
	}
	if _, err := ParseOverlapPolicy(c.OverlapPolicy); err != nil {
		return err
	}
	if c.QueueSize < 0 {
		return errx.Config("queue size must not be negative")
	}
	if c.EventBuffer < 0 {
		return errx.Config("event buffer must not be negative")
	}
	return nil
}
