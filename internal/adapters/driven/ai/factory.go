// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/apiclient"
	ollamaembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Options carries the outbound call settings shared by every adapter.
type Options struct {
	// Limiter is shared by the embedding and LLM services. Nil means unlimited.
	Limiter *apiclient.Limiter

	// Timeout overrides each adapter's per-attempt default when positive.
	Timeout time.Duration
}

// OptionsFromSettings builds Options from the [api] settings.
func OptionsFromSettings(api domain.APISettings) Options {
	return Options{
		Limiter: apiclient.NewLimiter(api.RequestsPerSecond),
		Timeout: time.Duration(api.TimeoutSeconds) * time.Second,
	}
}

// InitResult contains the AI services built from application settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds both AI services from settings. No connectivity check
// is made; `docqa settings check` does that explicitly.
func Initialise(settings domain.AppSettings) (*InitResult, error) {
	opts := OptionsFromSettings(settings.API)

	embedder, err := CreateEmbeddingService(&settings.Embedding, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingUnavailable, missingConfig(settings.Embedding.Provider))
	}

	llm, err := CreateLLMService(&settings.LLM, opts)
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		embedder.Close()
		return nil, fmt.Errorf("%w: %s", domain.ErrLLMUnavailable, missingConfig(settings.LLM.Provider))
	}

	return &InitResult{EmbeddingService: embedder, LLMService: llm}, nil
}

func missingConfig(provider domain.AIProvider) string {
	if !provider.IsValid() {
		return fmt.Sprintf("unknown provider %q. Run 'docqa settings set' to fix", provider)
	}
	if env := provider.APIKeyEnvVar(); env != "" {
		return fmt.Sprintf("%s API key not set. Set %s or run 'docqa settings set-key %s'", provider, env, provider)
	}
	return fmt.Sprintf("%s is not configured", provider)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, opts Options) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	// Checked before IsConfigured so the user gets a reason, not silence.
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
			Timeout:    opts.Timeout,
			Limiter:    opts.Limiter,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
			Timeout:    opts.Timeout,
			Limiter:    opts.Limiter,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings, opts Options) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: opts.Timeout,
			Limiter: opts.Limiter,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: opts.Timeout,
			Limiter: opts.Limiter,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: opts.Timeout,
			Limiter: opts.Limiter,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
