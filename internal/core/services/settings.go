package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyChunkSize         = "chunking.size"
	keyChunkOverlap      = "chunking.overlap"
	keyTopK              = "retrieval.top_k"
	keyMaxTokens         = "retrieval.max_tokens"
	keyTemperature       = "retrieval.temperature"
	keyIngestWorkers     = "ingest.workers"
	keyRequestsPerSecond = "api.requests_per_second"
	keyTimeoutSeconds    = "api.timeout_seconds"
	keyStorageBackend    = "storage.backend"
)

// DefaultOllamaURL is used when a local provider has no base URL.
const DefaultOllamaURL = "http://localhost:11434"

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every key Set accepts and how its value is parsed.
var settingKeys = map[string]keyKind{
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyLLMProvider:       kindString,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keyTopK:              kindInt,
	keyMaxTokens:         kindInt,
	keyTemperature:       kindFloat,
	keyIngestWorkers:     kindInt,
	keyRequestsPerSecond: kindFloat,
	keyTimeoutSeconds:    kindInt,
	keyStorageBackend:    kindString,
}

// SettingKeys returns the keys accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService maps config keys to domain.AppSettings.
// API keys resolve from the config file, then the provider's environment
// variable, then the secret store.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	secrets     driven.SecretStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// aiValidator and secrets are optional.
func NewSettingsService(
	configStore driven.ConfigStore,
	aiValidator driven.AIConfigValidator,
	secrets driven.SecretStore,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		secrets:     secrets,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.baseURL(keyEmbedBaseURL, embedProvider),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.baseURL(keyLLMBaseURL, llmProvider),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:        s.getInt(keyTopK, defaults.Retrieval.TopK),
			MaxTokens:   s.getInt(keyMaxTokens, defaults.Retrieval.MaxTokens),
			Temperature: s.configStore.GetFloat(keyTemperature),
		},
		Ingest: domain.IngestSettings{
			Workers: s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
		},
		API: domain.APISettings{
			RequestsPerSecond: s.configStore.GetFloat(keyRequestsPerSecond),
			TimeoutSeconds:    s.configStore.GetInt(keyTimeoutSeconds),
		},
		Storage: s.getStorage(defaults.Storage),
	}

	var err error
	if settings.Embedding.APIKey, err = s.resolveAPIKey(keyEmbedAPIKey, embedProvider); err != nil {
		return nil, err
	}
	if settings.LLM.APIKey, err = s.resolveAPIKey(keyLLMAPIKey, llmProvider); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save persists application settings. API keys are only written when set,
// and keys that came from the environment or keyring are not copied into
// the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyMaxTokens, settings.Retrieval.MaxTokens},
		{keyTemperature, settings.Retrieval.Temperature},
		{keyIngestWorkers, settings.Ingest.Workers},
		{keyRequestsPerSecond, settings.API.RequestsPerSecond},
		{keyTimeoutSeconds, settings.API.TimeoutSeconds},
		{keyStorageBackend, string(settings.Storage)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if err := s.saveAPIKey(keyEmbedAPIKey, settings.Embedding.Provider, settings.Embedding.APIKey); err != nil {
		return err
	}
	return s.saveAPIKey(keyLLMAPIKey, settings.LLM.Provider, settings.LLM.APIKey)
}

// Set updates a single key. The value is parsed to the key's type and
// checked before it is written.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = f
	default:
		parsed = value
	}

	switch key {
	case keyEmbedProvider:
		p := domain.AIProvider(value)
		if !slices.Contains(domain.AllEmbeddingProviders(), p) {
			return fmt.Errorf("%w: %s does not support embeddings", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrInvalidInput, value)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, value)
		}
	case keyChunkSize, keyChunkOverlap:
		current, err := s.Get()
		if err != nil {
			return err
		}
		chunking := current.Chunking
		if key == keyChunkSize {
			chunking.Size = parsed.(int)
		} else {
			chunking.Overlap = parsed.(int)
		}
		if err := chunking.Validate(); err != nil {
			return err
		}
	}

	// A provider switch drops the old provider's model and URL so the new
	// provider's defaults apply.
	var stale []string
	switch key {
	case keyEmbedProvider:
		if s.configStore.GetString(key) != value {
			stale = []string{keyEmbedModel, keyEmbedBaseURL}
		}
	case keyLLMProvider:
		if s.configStore.GetString(key) != value {
			stale = []string{keyLLMModel, keyLLMBaseURL}
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	for _, k := range stale {
		if err := s.configStore.Delete(k); err != nil {
			return fmt.Errorf("reset %s: %w", k, err)
		}
	}
	logger.Debug("Set %s", key)
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if provider.RequiresAPIKey() && apiKey == "" && settings.Embedding.Provider == provider {
		apiKey = settings.Embedding.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if provider.RequiresAPIKey() && apiKey == "" && settings.LLM.Provider == provider {
		apiKey = settings.LLM.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetAPIKey stores apiKey for provider in the secret store.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, provider)
	}
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrInvalidInput)
	}
	if s.secrets == nil {
		return fmt.Errorf("no secret store available")
	}
	if err := s.secrets.Set(provider.String(), strings.TrimSpace(apiKey)); err != nil {
		return fmt.Errorf("store %s key: %w", provider, err)
	}
	return nil
}

// Validate checks both providers are usable and the chunking window advances.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if p := settings.Embedding.Provider; p.IsValid() && !p.SupportsEmbeddings() {
		return fmt.Errorf("embedding provider %s does not support embeddings", settings.Embedding.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %s is not configured (%s)",
			settings.Embedding.Provider, keyHint(settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %s is not configured (%s)",
			settings.LLM.Provider, keyHint(settings.LLM.Provider))
	}
	if err := settings.Chunking.Validate(); err != nil {
		return err
	}
	if !settings.Storage.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", settings.Storage)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ConfigPath returns the config file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStorage(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) baseURL(key string, provider domain.AIProvider) string {
	val := s.configStore.GetString(key)
	if val == "" && provider.IsLocal() {
		return DefaultOllamaURL
	}
	return val
}

func (s *SettingsService) resolveAPIKey(key string, provider domain.AIProvider) (string, error) {
	if !provider.RequiresAPIKey() {
		return "", nil
	}
	if val := s.configStore.GetString(key); val != "" {
		return val, nil
	}
	if env := provider.APIKeyEnvVar(); env != "" {
		if val := strings.TrimSpace(s.getenv(env)); val != "" {
			return val, nil
		}
	}
	if s.secrets == nil {
		return "", nil
	}
	val, err := s.secrets.Get(provider.String())
	if err != nil {
		// A locked or missing keyring should not stop the CLI from starting.
		logger.Warn("read %s key from keyring: %v", provider, err)
		return "", nil
	}
	return val, nil
}

func (s *SettingsService) saveAPIKey(key string, provider domain.AIProvider, apiKey string) error {
	if apiKey == "" || !provider.RequiresAPIKey() {
		return nil
	}
	if s.keyFromOutsideConfig(provider, apiKey) {
		return nil
	}
	if err := s.configStore.Set(key, apiKey); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) keyFromOutsideConfig(provider domain.AIProvider, apiKey string) bool {
	if env := provider.APIKeyEnvVar(); env != "" && strings.TrimSpace(s.getenv(env)) == apiKey {
		return true
	}
	if s.secrets != nil {
		if val, err := s.secrets.Get(provider.String()); err == nil && val == apiKey {
			return true
		}
	}
	return false
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return DefaultOllamaURL
	}
	return current
}

func keyHint(provider domain.AIProvider) string {
	if env := provider.APIKeyEnvVar(); env != "" {
		return fmt.Sprintf("set %s or run 'docqa settings set-key %s'", env, provider)
	}
	return "run 'docqa settings set llm.provider <provider>'"
}
