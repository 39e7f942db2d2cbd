package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

// Config holds provider-level settings for chat model creation.
type Config struct {
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`
}

// NewChatModel builds the Gemini chat model used for both the planning and
// narration passes, with the given tool schemas bound so the model can
// request invocations.
func NewChatModel(ctx context.Context, cfg Config, modelCfg model.ChatModelConfig, tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       modelCfg.Model,
		Temperature: &modelCfg.Temperature,
		MaxTokens:   &modelCfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	bound, err := chatModel.WithTools(tools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to chat model")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Str("model", modelCfg.Model).Int("tools", len(tools)).Msg("Chat model ready")
	return bound, nil
}
