package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/nekochat-companion/server/internal/agent/conversations"
	"github.com/nekochat-companion/server/internal/agent/graph"
	"github.com/nekochat-companion/server/internal/agent/graph/prompts"
	"github.com/nekochat-companion/server/internal/agent/model"
	"github.com/nekochat-companion/server/internal/agent/repo"
	"github.com/nekochat-companion/server/internal/agent/rules"
	"github.com/nekochat-companion/server/internal/backend"
	"github.com/nekochat-companion/server/internal/core"
	logx "github.com/nekochat-companion/server/pkg/logger"
	pkgredis "github.com/nekochat-companion/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the companion,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// Engine configs
	Backend      model.BackendConfig
	Conversation model.ConversationConfig
}

func (c AppConfig) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	return c.Conversation.Validate()
}

var (
	envFile      string
	startBackend bool
	modelFlag    string
)

var rootCmd = &cobra.Command{
	Use:           "chatcore",
	Short:         "Chat with the desktop cat companion from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.Flags().BoolVar(&startBackend, "backend", false, "turn AI mode on at start-up")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "override BACKEND_MODEL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (AppConfig, error) {
	// Load .env file
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Could not load %s: %v\n", envFile, err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	if modelFlag != "" {
		cfg.Backend.Model = modelFlag
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = model.DefaultModel
	}
	return cfg, nil
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
	if err := cfg.Validate(); err != nil {
		logx.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, cleanup, err := buildController(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Close()

	if startBackend {
		if err := ctrl.SetMode(true); err != nil {
			return err
		}
	}

	return runREPL(ctx, ctrl, os.Stdin, os.Stdout)
}

// buildController wires the rule chain, the backend client and the
// optional Redis event mirror into a controller.
func buildController(ctx context.Context, cfg AppConfig) (*conversations.Controller, func(), error) {
	cleanup := func() {}

	table, err := rules.NewTable(rules.DefaultRules(), rules.DefaultGenericPool())
	if err != nil {
		return nil, cleanup, fmt.Errorf("build rule table: %w", err)
	}
	runner, err := graph.BuildRuleGraph(ctx, graph.Config{Table: table})
	if err != nil {
		return nil, cleanup, fmt.Errorf("build rule graph: %w", err)
	}

	renderer, err := prompts.NewRenderer(ctx, cfg.Backend.SystemPrompt)
	if err != nil {
		return nil, cleanup, err
	}
	provider, err := backend.NewProvider(ctx, cfg.Backend)
	if err != nil {
		return nil, cleanup, fmt.Errorf("build backend provider: %w", err)
	}
	client := backend.NewClient(provider, renderer, cfg.Backend)

	opts := []conversations.Option{
		conversations.WithModel(cfg.Backend.Model),
		conversations.WithBackendLabel(backend.Label(cfg.Backend.Provider)),
	}

	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New()
		if err != nil {
			// the mirror is optional; chat keeps working without it
			logx.Warn().Err(err).Msg("Failed to initialise Redis client, events will not be mirrored")
		} else {
			logx.Info().Str("channel_prefix", cfg.Redis.ChannelPrefix).Msg("Connected to Redis successfully")
			opts = append(opts, conversations.WithSink(repo.NewRedisEventRepository(rdb, cfg.Redis.ChannelPrefix)))
			cleanup = func() { _ = rdb.Close() }
		}
	}

	ctrl, err := conversations.New(cfg.Conversation, runner, client, opts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return ctrl, cleanup, nil
}
