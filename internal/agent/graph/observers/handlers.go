package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/nekochat-companion/server/pkg/logger"
)

// NewAllCallbacks returns every observer handler. Pass them with
// compose.WithCallbacks(observers.NewAllCallbacks()...).
func NewAllCallbacks() []einocb.Handler {
	typed := callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()

	return []einocb.Handler{typed, newNodeHandler()}
}

// newNodeHandler traces lambda nodes (classify, select, flatten_prompt) at debug level.
func newNodeHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			if info != nil && info.Component == "Lambda" {
				logx.Debug().Str("node", info.Name).Interface("input", input).Msg("node start")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if info != nil && info.Component == "Lambda" {
				logx.Debug().Str("node", info.Name).Interface("output", output).Msg("node end")
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			name := ""
			if info != nil {
				name = info.Name
			}
			logx.Warn().Err(err).Str("node", name).Msg("node failed")
			return ctx
		}).
		Build()
}
