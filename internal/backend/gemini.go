package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/nekochat-companion/server/internal/agent/graph/observers"
	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

var _ Provider = (*Gemini)(nil)

const NodeGeminiChat = "gemini_chat"

// Gemini generates through the Gemini API. Chat models are built lazily per
// model name because the name is only fixed once a probe succeeds.
type Gemini struct {
	client *genai.Client

	mu     sync.Mutex
	chains map[string]compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewGemini creates the genai client. It does not contact the API.
func NewGemini(ctx context.Context, cfg model.BackendConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errx.Config("gemini provider requires an API key")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	// the Ollama default is meaningless here; only honor an explicit override
	if cfg.BaseURL != "" && cfg.BaseURL != model.DefaultBaseURL {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		chains: map[string]compose.Runnable[[]*schema.Message, *schema.Message]{},
	}, nil
}

// ListModels walks every page of the model listing.
func (p *Gemini) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	listCfg := &genai.ListModelsConfig{}
	for {
		page, err := p.client.Models.List(ctx, listCfg)
		if err != nil {
			return nil, errx.Transport(err)
		}
		for _, m := range page.Items {
			if m != nil {
				names = append(names, m.Name)
			}
		}
		if page.NextPageToken == "" {
			return names, nil
		}
		listCfg.PageToken = page.NextPageToken
	}
}

// Generate sends the combined prompt as a single user message.
func (p *Gemini) Generate(ctx context.Context, in GenerateRequest) (string, error) {
	chain, err := p.chainFor(ctx, in)
	if err != nil {
		return "", err
	}

	out, err := chain.Invoke(ctx, []*schema.Message{schema.UserMessage(in.Prompt)},
		compose.WithCallbacks(observers.NewAllCallbacks()...))
	if err != nil {
		return "", errx.Transport(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", errx.Malformed("response")
	}
	return out.Content, nil
}

func (p *Gemini) chainFor(ctx context.Context, in GenerateRequest) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	// listed names look like "models/gemini-2.5-flash"; generation wants the bare id
	name := strings.TrimPrefix(in.Model, "models/")

	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.chains[name]; ok {
		return r, nil
	}

	temperature, topP, maxTokens := in.Temperature, in.TopP, in.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      p.client,
		Model:       name,
		Temperature: &temperature,
		TopP:        &topP,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", name).Msg("Error creating Gemini chat model")
		return nil, errx.Config("create gemini chat model %q: %v", name, err)
	}

	r, err := compose.NewChain[[]*schema.Message, *schema.Message]().
		AppendChatModel(cm, compose.WithNodeName(NodeGeminiChat)).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile gemini chain: %w", err)
	}
	p.chains[name] = r
	return r, nil
}
