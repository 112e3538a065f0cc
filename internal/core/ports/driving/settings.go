package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService reads and changes the persisted settings.
type SettingsService interface {
	// Get returns the settings with API keys filled in from the keyring
	// or environment.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// Set parses value according to the dotted key's type, validates the
	// result and saves it.
	Set(key, value string) error

	// SetEmbeddingProvider and SetLLMProvider switch provider. An empty
	// model selects the provider's default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetAPIKey stores the key in the OS keyring, never in the config file.
	SetAPIKey(provider domain.AIProvider, apiKey string) error

	Validate() error
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// provider.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error

	ConfigPath() string
}
