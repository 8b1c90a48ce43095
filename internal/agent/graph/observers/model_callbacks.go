package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	agentmodel "github.com/nekochat-companion/server/internal/agent/model"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

// newModelHandler logs model calls and, when the provider reports usage,
// the token counts and an estimated USD cost.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			n := 0
			if input != nil {
				n = len(input.Messages)
			}
			logx.Debug().Str("model_node", info.Name).Int("messages", n).Msg("model call start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			if output == nil || output.TokenUsage == nil {
				logx.Debug().Str("model_node", info.Name).Msg("model call end")
				return ctx
			}

			modelName := ""
			if output.Config != nil {
				modelName = output.Config.Model
			}
			usage := output.TokenUsage
			ev := logx.Debug().
				Str("model", modelName).
				Int("prompt_tokens", usage.PromptTokens).
				Int("completion_tokens", usage.CompletionTokens).
				Int("total_tokens", usage.TotalTokens)
			if pricing, ok := agentmodel.ResolvePricing(modelName); ok {
				inC, outC, totalC := agentmodel.ComputeCost(&schema.TokenUsage{
					PromptTokens:     usage.PromptTokens,
					CompletionTokens: usage.CompletionTokens,
					TotalTokens:      usage.TotalTokens,
				}, pricing)
				ev = ev.Float64("input_cost_usd", inC).
					Float64("output_cost_usd", outC).
					Float64("total_cost_usd", totalC)
			}
			ev.Msg("LLM usage")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("model_node", info.Name).Msg("model call failed")
			return ctx
		},
	}
}
