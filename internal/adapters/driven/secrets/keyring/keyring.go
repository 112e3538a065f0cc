// Package keyring stores API keys in the OS keyring via zalando/go-keyring.
// On macOS it uses Keychain, on Linux secret-service (D-Bus), and on Windows
// the Credential Manager.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SecretStore = (*Store)(nil)

// DefaultService is the keyring service name entries are filed under.
const DefaultService = "docqa"

// Store is a driven.SecretStore backed by the OS keyring.
type Store struct {
	service string
}

// NewStore returns a Store for service. Empty uses DefaultService.
func NewStore(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Get returns the secret for key, or "" when none is stored.
func (s *Store) Get(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("keyring: key must not be empty")
	}
	val, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring: retrieving %s/%s: %w", s.service, key, err)
	}
	return val, nil
}

// Set stores a secret.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("keyring: key must not be empty")
	}
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring: storing %s/%s: %w", s.service, key, err)
	}
	return nil
}

// Delete removes a secret. A missing entry is not an error.
func (s *Store) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring: deleting %s/%s: %w", s.service, key, err)
	}
	return nil
}
