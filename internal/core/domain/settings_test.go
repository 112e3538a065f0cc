package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		want     bool
	}{
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProvider("cohere"), false},
		{AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
}

func TestAIProvider_IsLocal(t *testing.T) {
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Anthropic (cloud)", AIProviderAnthropic.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestAIProvider_APIKeyEnvVar(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", AIProviderOpenAI.APIKeyEnvVar())
	assert.Equal(t, "ANTHROPIC_API_KEY", AIProviderAnthropic.APIKeyEnvVar())
	assert.Empty(t, AIProviderOllama.APIKeyEnvVar())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		want     bool
	}{
		{"empty", EmbeddingSettings{}, false},
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"anthropic has no embeddings", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		want     bool
	}{
		{"empty", LLMSettings{}, false},
		{"ollama", LLMSettings{Provider: AIProviderOllama}, true},
		{"anthropic without key", LLMSettings{Provider: AIProviderAnthropic}, false},
		{"anthropic with key", LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}

func TestChunkingSettings_Validate(t *testing.T) {
	assert.NoError(t, ChunkingSettings{Size: 1000, Overlap: 200}.Validate())
	assert.NoError(t, ChunkingSettings{Size: 10, Overlap: 0}.Validate())
	assert.ErrorIs(t, ChunkingSettings{Size: 0, Overlap: 0}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, ChunkingSettings{Size: 100, Overlap: 100}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, ChunkingSettings{Size: 100, Overlap: -1}.Validate(), ErrInvalidInput)
}

func TestStorageBackend_IsValid(t *testing.T) {
	assert.True(t, StorageSQLite.IsValid())
	assert.True(t, StorageMemory.IsValid())
	assert.False(t, StorageBackend("postgres").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, AIProviderOpenAI, s.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.Equal(t, 3, s.Retrieval.TopK)
	assert.Equal(t, 500, s.Retrieval.MaxTokens)
	assert.Zero(t, s.Retrieval.Temperature)
	assert.Equal(t, 1, s.Ingest.Workers)
	assert.Equal(t, StorageSQLite, s.Storage)
	assert.False(t, s.Embedding.IsConfigured())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 768, dims["nomic-embed-text"])
}

func TestAllProviders(t *testing.T) {
	assert.Len(t, AllEmbeddingProviders(), 2)
	assert.Len(t, AllLLMProviders(), 3)
}

func TestAIProvider_SupportsEmbeddings(t *testing.T) {
	assert.True(t, AIProviderOllama.SupportsEmbeddings())
	assert.True(t, AIProviderOpenAI.SupportsEmbeddings())
	assert.False(t, AIProviderAnthropic.SupportsEmbeddings())
	assert.False(t, AIProvider("x").SupportsEmbeddings())
	assert.False(t, AIProvider("x").IsLocal())
}

func TestDefaultModels(t *testing.T) {
	assert.Equal(t, []AIProvider{AIProviderOllama, AIProviderOpenAI}, AllEmbeddingProviders())
	assert.Equal(t, []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}, AllLLMProviders())

	embed := DefaultEmbeddingModels()
	assert.Len(t, embed, 2)
	assert.Equal(t, "text-embedding-3-small", embed[AIProviderOpenAI])
	assert.NotContains(t, embed, AIProviderAnthropic)

	chat := DefaultLLMModels()
	assert.Equal(t, "llama3.2", chat[AIProviderOllama])
	assert.Equal(t, "claude-3-5-haiku-latest", chat[AIProviderAnthropic])
}
