package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultDirName is the directory under the user's home holding docqa state.
const DefaultDirName = ".docqa"

// ConfigStore keeps settings in a TOML file. Tables are flattened to
// dotted keys on load and rebuilt on every write.
type ConfigStore struct {
	*config.Values
	filePath string
}

// NewConfigStore opens dir/config.toml, creating dir when needed. An
// empty dir means ~/.docqa.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{Values: config.NewValues(nil), filePath: filepath.Join(dir, "config.toml")}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultDir returns ~/.docqa.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Set writes through to disk.
func (s *ConfigStore) Set(key string, value any) error {
	return s.Update(func(m map[string]any) error {
		m[key] = value
		return s.write(m)
	})
}

// Delete writes through to disk when the key existed.
func (s *ConfigStore) Delete(key string) error {
	return s.Update(func(m map[string]any) error {
		if _, ok := m[key]; !ok {
			return nil
		}
		delete(m, key)
		return s.write(m)
	})
}

func (s *ConfigStore) Save() error {
	return s.Update(s.write)
}

// write must run under Update.
func (s *ConfigStore) write(m map[string]any) error {
	data, err := toml.Marshal(unflattenMap(m))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.filePath, err)
	}
	// The file can hold API keys.
	return os.WriteFile(s.filePath, data, 0o600)
}

// Load replaces the in-memory values with the file's. A missing file
// loads as empty.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.Replace(flattenMap(tree, ""))
	return nil
}

func (s *ConfigStore) Path() string {
	return s.filePath
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(tree map[string]any, prefix string) map[string]any {
	flat := map[string]any{}
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			maps.Copy(flat, flattenMap(table, k))
			continue
		}
		flat[k] = v
	}
	return flat
}

// unflattenMap is the inverse of flattenMap so the file on disk keeps
// [embedding] and [llm] tables. A key that would collide with a scalar
// stays dotted at the deepest table that can hold it.
func unflattenMap(flat map[string]any) map[string]any {
	root := map[string]any{}
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, ".")
		node := root
		i := 0
		for ; i < len(parts)-1; i++ {
			child, exists := node[parts[i]]
			if !exists {
				next := make(map[string]any)
				node[parts[i]] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				break
			}
			node = next
		}
		node[strings.Join(parts[i:], ".")] = flat[key]
	}
	return root
}
