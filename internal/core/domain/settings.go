package domain

import (
	"fmt"
	"slices"
)

const unknownDescription = "Unknown"

// AIProvider names a hosted or local model provider.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

type providerInfo struct {
	label      string
	keyEnv     string // empty for providers that need no key
	embedModel string // empty when the provider has no embeddings API
	chatModel  string
}

var providerTable = map[AIProvider]providerInfo{
	AIProviderOllama:    {label: "Ollama (local)", embedModel: "nomic-embed-text", chatModel: "llama3.2"},
	AIProviderOpenAI:    {label: "OpenAI (cloud)", keyEnv: "OPENAI_API_KEY", embedModel: "text-embedding-3-small", chatModel: "gpt-4o-mini"},
	AIProviderAnthropic: {label: "Anthropic (cloud)", keyEnv: "ANTHROPIC_API_KEY", chatModel: "claude-3-5-haiku-latest"},
}

// providerOrder fixes the listing order for menus and help text.
var providerOrder = []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}

// IsValid reports whether p is a known provider.
func (p AIProvider) IsValid() bool {
	_, ok := providerTable[p]
	return ok
}

func (p AIProvider) RequiresAPIKey() bool {
	return providerTable[p].keyEnv != ""
}

// IsLocal reports whether the provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	return p.IsValid() && !p.RequiresAPIKey()
}

// SupportsEmbeddings is false for chat-only providers.
func (p AIProvider) SupportsEmbeddings() bool {
	return providerTable[p].embedModel != ""
}

func (p AIProvider) String() string {
	return string(p)
}

func (p AIProvider) Description() string {
	if info, ok := providerTable[p]; ok {
		return info.label
	}
	return unknownDescription
}

// APIKeyEnvVar is the environment variable checked for the provider's key.
func (p AIProvider) APIKeyEnvVar() string {
	return providerTable[p].keyEnv
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// Validate checks the chunk window can always advance.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrInvalidInput, c.Size, c.Overlap)
	}
	return nil
}

// RetrievalSettings controls question answering.
type RetrievalSettings struct {
	// TopK is the number of chunks used as context.
	TopK int

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature is the sampling temperature for generation.
	Temperature float64
}

// IngestSettings controls batch uploads.
type IngestSettings struct {
	// Workers is the number of documents ingested concurrently.
	// One means strictly sequential.
	Workers int
}

// APISettings controls outbound calls to AI providers.
type APISettings struct {
	// RequestsPerSecond limits outbound calls. Zero means unlimited.
	RequestsPerSecond float64

	// TimeoutSeconds overrides the per-attempt timeout. Zero keeps adapter defaults.
	TimeoutSeconds int
}

// StorageBackend selects where documents and chunks are kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists to ~/.docqa/data/metadata.db.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps everything for the lifetime of the process.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Chunking holds text splitting settings.
	Chunking ChunkingSettings

	// Retrieval holds question answering settings.
	Retrieval RetrievalSettings

	// Ingest holds batch upload settings.
	Ingest IngestSettings

	// API holds outbound call settings.
	API APISettings

	// Storage selects the persistence backend.
	Storage StorageBackend
}

// DefaultAppSettings returns settings with sensible defaults.
// Both AI services default to OpenAI; an API key is still required.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalSettings{
			TopK:        DefaultTopK,
			MaxTokens:   500,
			Temperature: 0,
		},
		Ingest: IngestSettings{
			Workers: 1,
		},
		Storage: StorageSQLite,
	}
}

// AllEmbeddingProviders lists the providers with an embeddings API.
func AllEmbeddingProviders() []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if p.SupportsEmbeddings() {
			out = append(out, p)
		}
	}
	return out
}

// AllLLMProviders lists the generation providers in display order.
func AllLLMProviders() []AIProvider {
	return slices.Clone(providerOrder)
}

func DefaultEmbeddingModels() map[AIProvider]string {
	out := map[AIProvider]string{}
	for p, info := range providerTable {
		if info.embedModel != "" {
			out[p] = info.embedModel
		}
	}
	return out
}

func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string, len(providerTable))
	for p, info := range providerTable {
		out[p] = info.chatModel
	}
	return out
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
