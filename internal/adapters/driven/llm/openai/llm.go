// Package openai provides an LLM service adapter using the OpenAI Chat
// Completions API through the official SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/custodia-labs/docqa/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Empty uses the SDK default.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the per-attempt timeout (default: 120s).
	Timeout time.Duration

	// Limiter throttles requests. Nil means unlimited.
	Limiter *apiclient.Limiter

	// Policy overrides the retry policy. Nil keeps apiclient.DefaultPolicy.
	Policy *apiclient.Policy
}

// LLMService generates answers with OpenAI chat models.
type LLMService struct {
	client  openaisdk.Client
	model   string
	limiter *apiclient.Limiter
	policy  apiclient.Policy
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	// The SDK's own retries are disabled; apiclient.Retry applies the policy.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	policy := apiclient.DefaultPolicy
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}

	return &LLMService{
		client:  openaisdk.NewClient(opts...),
		model:   cfg.Model,
		limiter: cfg.Limiter,
		policy:  policy,
	}, nil
}

// Complete sends the system and user prompts as one chat exchange.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(req.SystemPrompt),
			openaisdk.UserMessage(req.UserPrompt),
		},
		Temperature: param.NewOpt(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(int64(req.MaxTokens))
	}

	var resp *openaisdk.ChatCompletion
	err := apiclient.Retry(ctx, s.policy, s.limiter, isRetryable, func(ctx context.Context) error {
		var err error
		resp, err = s.client.Chat.Completions.New(ctx, params)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	logger.Debug("openai: %d prompt tokens, %d completion tokens",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func isRetryable(err error) bool {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return apiclient.IsTransportError(err)
}
