// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// DefaultBaseURL is the address of a local Ollama server.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is used when no model is configured.
	DefaultModel = "nomic-embed-text"

	// DefaultTimeout bounds each attempt when Config.Timeout is unset.
	DefaultTimeout = 30 * time.Second
)

// Config configures the adapter. Every field has a default.
type Config struct {
	BaseURL string
	Model   string

	// Timeout bounds each attempt.
	Timeout time.Duration

	// Dimensions overrides the length looked up from the model name.
	Dimensions int

	Limiter *apiclient.Limiter
	Policy  *apiclient.Policy
}

// EmbeddingService calls POST /api/embed.
type EmbeddingService struct {
	client     *apiclient.Client
	endpoint   string
	tags       string
	model      string
	dimensions int
}

// embedRequest and embedResponse are the /api/embed bodies. Input always
// goes as an array so one call covers a whole batch.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService builds the adapter.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[model]
	}

	opts := []apiclient.Option{apiclient.WithTimeout(timeout), apiclient.WithLimiter(cfg.Limiter)}
	if cfg.Policy != nil {
		opts = append(opts, apiclient.WithPolicy(*cfg.Policy))
	}

	return &EmbeddingService{
		client:     apiclient.New("ollama", opts...),
		endpoint:   base + "/api/embed",
		tags:       base + "/api/tags",
		model:      model,
		dimensions: dims,
	}
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	if err := s.client.DoJSON(ctx, http.MethodPost, s.endpoint, embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if len(e) == 0 {
			return nil, fmt.Errorf("ollama: empty embedding at index %d", i)
		}
		out[i] = make([]float32, len(e))
		for j, v := range e {
			out[i][j] = float32(v)
		}
	}
	return out, nil
}

// Dimensions returns the vector length, or 0 for a model whose length is
// not known in advance.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model tag.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists local models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.client.DoJSON(ctx, http.MethodGet, s.tags, nil, nil); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}
