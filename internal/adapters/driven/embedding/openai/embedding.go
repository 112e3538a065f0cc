// Package openai embeds text with the OpenAI embeddings endpoint through
// the official SDK.
package openai

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/custodia-labs/docqa/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "text-embedding-3-small"

	// DefaultTimeout bounds each attempt when Config.Timeout is unset.
	DefaultTimeout = 60 * time.Second
)

// Config configures the adapter. Only APIKey is required.
type Config struct {
	APIKey string

	// BaseURL points at an OpenAI-compatible API. Empty uses api.openai.com.
	BaseURL string
	Model   string

	// Timeout bounds each attempt.
	Timeout time.Duration

	// Dimensions shortens text-embedding-3 vectors. Other models ignore it.
	// Zero looks the length up from the model name.
	Dimensions int

	Limiter *apiclient.Limiter
	Policy  *apiclient.Policy
}

// EmbeddingService calls POST /embeddings with the whole batch at once.
type EmbeddingService struct {
	client     openaisdk.Client
	model      string
	dimensions int
	limiter    *apiclient.Limiter
	policy     apiclient.Policy
}

// NewEmbeddingService builds the adapter. Retries are left to
// apiclient.Retry, so the SDK's own are turned off.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	model := cmp.Or(cfg.Model, DefaultModel)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dims := cfg.Dimensions
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[model]
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	policy := apiclient.DefaultPolicy
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}

	return &EmbeddingService{
		client:     openaisdk.NewClient(opts...),
		model:      model,
		dimensions: dims,
		limiter:    cfg.Limiter,
		policy:     policy,
	}, nil
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends every text in one request and reorders the response by
// its index field.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(s.model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if s.dimensions > 0 && strings.HasPrefix(s.model, "text-embedding-3-") {
		params.Dimensions = param.NewOpt(int64(s.dimensions))
	}

	start := time.Now()
	var resp *openaisdk.CreateEmbeddingResponse
	err := apiclient.Retry(ctx, s.policy, s.limiter, isRetryable, func(ctx context.Context) error {
		var err error
		resp, err = s.client.Embeddings.New(ctx, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("openai: embeddings request failed: %w", err)
	}
	logger.Debug("openai: embedded %d texts (%d tokens) in %s",
		len(texts), resp.Usage.TotalTokens, time.Since(start).Round(time.Millisecond))

	return collect(resp.Data, len(texts))
}

func collect(data []openaisdk.Embedding, n int) ([][]float32, error) {
	if len(data) != n {
		return nil, fmt.Errorf("openai: expected %d embeddings, got %d", n, len(data))
	}
	out := make([][]float32, n)
	for _, d := range data {
		i := int(d.Index)
		if i < 0 || i >= n || out[i] != nil {
			return nil, fmt.Errorf("openai: invalid embedding index %d", d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("openai: empty embedding at index %d", i)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vector length, or 0 for a model whose length is
// not known in advance.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model ID.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}

func isRetryable(err error) bool {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return apiclient.IsTransportError(err)
}
