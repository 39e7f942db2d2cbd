package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gemlight/diamond-agent/internal/agent"
	"github.com/gemlight/diamond-agent/internal/agent/flow"
	"github.com/gemlight/diamond-agent/internal/agent/llm"
	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/agent/repo"
	"github.com/gemlight/diamond-agent/internal/agent/tools"
	"github.com/gemlight/diamond-agent/internal/catalog"
	"github.com/gemlight/diamond-agent/internal/whatsapp"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
	pkgpostgres "github.com/gemlight/diamond-agent/pkg/postgres"
	pkgredis "github.com/gemlight/diamond-agent/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Logger   logx.Config
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// LLM provider
	LLM llm.Config

	// Agent configs
	ChatModel    model.ChatModelConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig

	// Transport
	WhatsApp whatsapp.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}
	logx.Init(cfg.Logger)

	rdb := cfg.Redis.MustNew(ctx)
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	// The catalog backs onto Postgres when a DSN is configured, otherwise the
	// seeded in-memory inventory serves local runs.
	var store catalog.Store
	if cfg.Postgres.DSN != "" {
		db := cfg.Postgres.MustNew()
		defer db.Close()
		store = catalog.NewPostgresStore(db)
		logx.Info().Msg("Connected to Postgres catalog")
	} else {
		store = catalog.NewMemoryStore(nil)
		logx.Info().Int("diamonds", len(catalog.SeedInventory)).Msg("Using in-memory catalog")
	}

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", cfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}
	callTimeout, err := time.ParseDuration(cfg.Conversation.Tools.CallTimeout)
	if err != nil {
		logx.Fatal().Str("timeout", cfg.Conversation.Tools.CallTimeout).Err(err).Msg("Invalid CONVERSATION_TOOL_CALL_TIMEOUT")
	}

	chatModel, err := llm.NewChatModel(ctx, cfg.LLM, cfg.ChatModel, tools.Infos())
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build chat model")
	}

	registry := tools.NewRegistry(store)
	executor := tools.NewExecutor(registry, callTimeout, cfg.Conversation.Tools.MaxCalls)
	conversationRepo := repo.NewRedisConversationRepository(rdb, ttl, cfg.Conversation.MaxHistoryTurns)

	f, err := flow.New(flow.Config{
		Repo:      conversationRepo,
		ChatModel: chatModel,
		Executor:  executor,
		Prompt:    cfg.Prompt,
		ModelName: cfg.ChatModel.Model,
		MaxTurns:  cfg.Conversation.MaxHistoryTurns,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build conversation flow")
	}
	assistant := agent.New(f)

	pollInterval, err := time.ParseDuration(cfg.WhatsApp.PollInterval)
	if err != nil {
		logx.Fatal().Str("interval", cfg.WhatsApp.PollInterval).Err(err).Msg("Invalid WHATSAPP_POLL_INTERVAL")
	}
	httpTimeout, err := time.ParseDuration(cfg.WhatsApp.HTTPTimeout)
	if err != nil {
		logx.Fatal().Str("timeout", cfg.WhatsApp.HTTPTimeout).Err(err).Msg("Invalid WHATSAPP_HTTP_TIMEOUT")
	}

	client := whatsapp.NewClient(cfg.WhatsApp.BaseURL, httpTimeout)
	listener := whatsapp.NewListener(client, assistant.HandleMessage, pollInterval)

	if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
		logx.Fatal().Err(err).Msg("Listener terminated")
	}
	logx.Info().Msg("Shutdown complete")
}
