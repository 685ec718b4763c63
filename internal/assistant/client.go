package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"shopterm/internal/config"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("assistant llm is not configured")

// Client wraps the chat-completion backend used by the assist command. When
// the model or API key is missing it stays disabled and every command that
// does not need it keeps working.
type Client struct {
	client  *openrouter.Client
	model   string
	logger  *zap.Logger
	enabled bool
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	logger = logger.Named("assistant")
	model := strings.TrimSpace(cfg.LLMModel)
	apiKey := strings.TrimSpace(cfg.LLMAPIKey)

	if model == "" || apiKey == "" {
		logger.Warn("LLM config is incomplete; assistant is disabled",
			zap.Bool("has_model", model != ""),
			zap.Bool("has_api_key", apiKey != ""),
		)
		return &Client{
			model:  model,
			logger: logger,
		}, nil
	}

	cfgClient := openrouter.DefaultConfig(apiKey)
	if strings.TrimSpace(cfg.LLMBaseURL) != "" {
		cfgClient.BaseURL = strings.TrimSpace(cfg.LLMBaseURL)
	}
	cfgClient.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client:  openrouter.NewClientWithConfig(*cfgClient),
		model:   model,
		logger:  logger,
		enabled: true,
	}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Client) ChatWithMessages(ctx context.Context, messages []openrouter.ChatCompletionMessage, tools []openrouter.Tool) (openrouter.ChatCompletionResponse, error) {
	if c == nil || !c.enabled || c.client == nil {
		return openrouter.ChatCompletionResponse{}, ErrNotConfigured
	}

	request := openrouter.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	}

	return c.client.CreateChatCompletion(ctx, request)
}
