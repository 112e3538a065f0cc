package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptReadme = `# docqa prompts

answer_system.txt is the system prompt sent with every question. The
single %s placeholder is replaced by the retrieved chunks, separated by
"---". Without a placeholder the chunks are appended after the prompt.

Edits are picked up on the next question. Delete a file to go back to the
built-in default.
`

var builtinPrompts = map[string]string{
	driven.PromptAnswerSystem: driven.DefaultAnswerSystemPrompt,
}

// DefaultPrompt returns the built-in text for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := builtinPrompts[name]
	return p, ok
}

type cachedPrompt struct {
	text    string
	modTime time.Time
	size    int64
}

// PromptStore serves prompts from <dir>/<name>.txt. The directory is
// seeded with the built-in prompts on first use, never overwriting a
// user's file. A file is re-read whenever its size or mtime changes, and
// a missing or unreadable file falls back to the built-in text.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore returns a store rooted at dir, or ~/.docqa/prompts when
// dir is empty. Nothing touches the disk until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName, "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]cachedPrompt{}}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the prompt called name.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(func() { s.seedErr = s.seedDefaults() })

	text, err := s.read(name)
	if err == nil {
		return text, nil
	}
	if builtin, ok := builtinPrompts[name]; ok {
		return builtin, nil
	}
	if s.seedErr != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(err, s.seedErr))
	}
	return "", fmt.Errorf("load prompt %q: %w", name, err)
}

// Reload forgets every cached prompt.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *PromptStore) read(name string) (string, error) {
	path := filepath.Join(s.dir, name+".txt")
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime(), size: info.Size()}
	return text, nil
}

func (s *PromptStore) seedDefaults() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	files := map[string]string{"README.md": promptReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text
	}
	for file, text := range files {
		if err := writeIfMissing(filepath.Join(s.dir, file), text); err != nil {
			return fmt.Errorf("seed %s: %w", file, err)
		}
	}
	return nil
}

func writeIfMissing(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
