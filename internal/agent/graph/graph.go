package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/nekochat-companion/server/internal/agent/graph/observers"
	"github.com/nekochat-companion/server/internal/agent/model"
	"github.com/nekochat-companion/server/internal/agent/rules"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

const (
	NodeClassify = "classify"
	NodeSelect   = "select"
)

// Runner produces a rule-based reply for one message. It never touches the
// network and returns synchronously.
type Runner interface {
	Reply(ctx context.Context, message string) (model.RuleReply, error)
}

// Config holds what the rule chain needs.
type Config struct {
	Table *rules.Table
	// Rand overrides the process-wide random source; tests pin it.
	Rand rules.Rand
}

type ruleRunner struct {
	runnable compose.Runnable[string, model.RuleReply]
}

func (r *ruleRunner) Reply(ctx context.Context, message string) (model.RuleReply, error) {
	return r.runnable.Invoke(ctx, message, compose.WithCallbacks(observers.NewAllCallbacks()...))
}

// BuildRuleGraph compiles classify -> select into a runnable chain.
func BuildRuleGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Table == nil {
		return nil, fmt.Errorf("rule table is nil")
	}

	classifier := rules.NewClassifier(cfg.Table)
	selector := rules.NewSelector(cfg.Table, cfg.Rand)

	chain := compose.NewChain[string, model.RuleReply]().
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, msg string) (model.Category, error) {
			return classifier.Classify(msg), nil
		}), compose.WithNodeName(NodeClassify)).
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, c model.Category) (model.RuleReply, error) {
			text, err := selector.Select(c)
			if err != nil {
				return model.RuleReply{}, err
			}
			return model.RuleReply{Category: c, Text: text}, nil
		}), compose.WithNodeName(NodeSelect))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling rule graph")
		return nil, fmt.Errorf("error compiling rule graph: %w", err)
	}

	logx.Debug().Int("categories", len(cfg.Table.Order())).Msg("Rule graph compiled successfully")
	return &ruleRunner{runnable: runnable}, nil
}
