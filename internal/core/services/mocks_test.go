package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// topicWords maps words to vector axes so tests can steer similarity.
var topicWords = []string{"cat", "dog", "fish", "bird"}

// topicVector returns a vector with one axis per topic word plus a bias
// axis so no text embeds to the zero vector.
func topicVector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(topicWords)+1)
	for i, w := range topicWords {
		vec[i] = float32(strings.Count(lower, w))
	}
	vec[len(topicWords)] = 0.01
	return vec
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	vectorFor  func(string) []float32
	embedErr   error
	batchErr   error
	calls      atomic.Int32
	batchCalls atomic.Int32
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if m.vectorFor != nil {
		return m.vectorFor(text)
	}
	return topicVector(text)
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = m.vector(t)
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.vector(""))
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	requests []driven.CompletionRequest
}

func (m *mockLLMService) Complete(_ context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) lastRequest() driven.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return driven.CompletionRequest{}
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockSecretStore implements driven.SecretStore for testing.
type mockSecretStore struct {
	secrets map[string]string
	getErr  error
	setErr  error
}

func newMockSecretStore() *mockSecretStore {
	return &mockSecretStore{secrets: make(map[string]string)}
}

func (m *mockSecretStore) Get(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.secrets[key], nil
}

func (m *mockSecretStore) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.secrets[key] = value
	return nil
}

func (m *mockSecretStore) Delete(key string) error {
	delete(m.secrets, key)
	return nil
}

// mockAIConfigValidator implements driven.AIConfigValidator for testing.
type mockAIConfigValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIConfigValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

// failingConfigStore wraps a ConfigStore and fails on a specific key.
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if key == f.failOn {
		return errTestStore
	}
	return f.ConfigStore.Set(key, value)
}

// failingDocStore wraps the memory DocumentStore and fails chunk writes.
type failingDocStore struct {
	*memory.DocumentStore
	saveChunksErr error
}

func (f *failingDocStore) SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if f.saveChunksErr != nil {
		return f.saveChunksErr
	}
	return f.DocumentStore.SaveChunks(ctx, documentID, chunks)
}

// emptySplitter returns no chunks for any input.
type emptySplitter struct{}

func (emptySplitter) Split(string) []string { return nil }
func (emptySplitter) ChunkSize() int        { return 1000 }
func (emptySplitter) Overlap() int          { return 200 }

type testError string

func (e testError) Error() string { return string(e) }

const (
	errTestStore     = testError("store unavailable")
	errTestEmbedding = testError("embedding provider down")
	errTestLLM       = testError("llm provider down")
)
