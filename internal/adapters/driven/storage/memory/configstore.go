package memory

import (
	"github.com/custodia-labs/docqa/internal/adapters/driven/config"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings for the life of the process. It is used by
// tests and when no config directory can be created.
type ConfigStore struct {
	*config.Values
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{Values: config.NewValues(nil)}
}

func (s *ConfigStore) Set(key string, value any) error {
	return s.Update(func(m map[string]any) error {
		m[key] = value
		return nil
	})
}

func (s *ConfigStore) Delete(key string) error {
	return s.Update(func(m map[string]any) error {
		delete(m, key)
		return nil
	})
}

// Save and Load have nothing to do.
func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string {
	return ":memory:"
}
