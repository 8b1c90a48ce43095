package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/nekochat-companion/server/internal/agent/graph/observers"
)

//go:embed template/persona_prompt.txt
var personaSystemPrompt string

// generateTemplate combines the persona with exactly one user message; no
// earlier turns are ever included.
const generateTemplate = "系统设定：{system_prompt}\n用户消息：{user_message}\n请以猫娘喵喵的身份回复："

const (
	NodePersonaPrompt = "persona_prompt"
	NodeFlattenPrompt = "flatten_prompt"
)

// DefaultPersona returns the built-in cat persona instructions.
func DefaultPersona() string {
	return strings.TrimSpace(personaSystemPrompt)
}

// Renderer turns a raw user message into the single combined prompt sent to
// the generation backend.
type Renderer struct {
	system   string
	runnable compose.Runnable[map[string]any, string]
}

// NewRenderer compiles the prompt chain. An empty systemPrompt selects the
// built-in persona.
func NewRenderer(ctx context.Context, systemPrompt string) (*Renderer, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultPersona()
	}

	tpl := prompt.FromMessages(schema.FString, schema.UserMessage(generateTemplate))

	chain := compose.NewChain[map[string]any, string]().
		AppendChatTemplate(tpl, compose.WithNodeName(NodePersonaPrompt)).
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, msgs []*schema.Message) (string, error) {
			if len(msgs) == 0 || msgs[0] == nil {
				return "", fmt.Errorf("persona prompt: empty result")
			}
			return msgs[0].Content, nil
		}), compose.WithNodeName(NodeFlattenPrompt))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile persona prompt: %w", err)
	}
	return &Renderer{system: systemPrompt, runnable: runnable}, nil
}

// Render builds the combined prompt for one user message.
func (r *Renderer) Render(ctx context.Context, userMessage string) (string, error) {
	out, err := r.runnable.Invoke(ctx, map[string]any{
		"system_prompt": r.system,
		"user_message":  userMessage,
	}, compose.WithCallbacks(observers.NewAllCallbacks()...))
	if err != nil {
		return "", fmt.Errorf("render persona prompt: %w", err)
	}
	return out, nil
}
