package driven

// SecretStore keeps API keys outside the config file.
type SecretStore interface {
	// Get returns the secret for key. Missing keys return "" and no error.
	Get(key string) (string, error)

	// Set stores a secret.
	Set(key, value string) error

	// Delete removes a secret. Missing keys are not an error.
	Delete(key string) error
}
