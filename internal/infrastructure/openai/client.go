package openai

import (
	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jestelle/slash-podcast/internal/config"
)

// Client wraps the OpenAI API for dialogue writing and speech synthesis.
type Client struct {
	api       *openai.Client
	cfg       config.OpenAIConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// New builds the client. BaseURL override supports proxies and compatible
// local servers.
func New(cfg config.OpenAIConfig, logger *zap.Logger) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	if cfg.DialogueAttempts <= 0 {
		cfg.DialogueAttempts = 3
	}
	return &Client{
		api:       openai.NewClientWithConfig(apiConfig),
		cfg:       cfg,
		validator: validator.New(),
		logger:    logger,
	}
}
