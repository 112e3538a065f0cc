package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Provider is the lifecycle shared by every remote model adapter.
type Provider interface {
	// Ping makes the cheapest request the provider supports.
	Ping(ctx context.Context) error
	Close() error
}

// EmbeddingService turns text into vectors. A failed call returns an
// error; it never substitutes a zero or random vector.
type EmbeddingService interface {
	Provider

	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the expected vector length, or 0 when the model is not
	// one the adapter knows. Restored embeddings are checked against it.
	Dimensions() int
	ModelName() string
}

// AIConfigValidator checks provider settings by contacting the provider.
// Settings that do not describe a usable provider validate as nil.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
