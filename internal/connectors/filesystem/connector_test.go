package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// writeTree creates files relative to root. Parent directories are created.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// collect drains both FullSync channels and returns relative paths, sorted.
func collect(t *testing.T, root string, docs <-chan domain.RawDocument, errs <-chan error) ([]string, []error) {
	t.Helper()
	var (
		paths  []string
		errors []error
	)
	timeout := time.After(5 * time.Second)
	for docs != nil || errs != nil {
		select {
		case doc, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			rel, err := filepath.Rel(root, doc.URI)
			require.NoError(t, err)
			paths = append(paths, filepath.ToSlash(rel))
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			errors = append(errors, err)
		case <-timeout:
			t.Fatal("timeout waiting for FullSync")
		}
	}
	sort.Strings(paths)
	return paths, errors
}

// nextChange waits for a change on path, skipping events for other paths.
func nextChange(t *testing.T, changes <-chan domain.RawDocumentChange, path string) domain.RawDocumentChange {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case change, ok := <-changes:
			require.True(t, ok, "changes channel closed")
			if change.Document.URI == path {
				return change
			}
		case <-timeout:
			t.Fatalf("timeout waiting for change on %s", path)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		c := New("/tmp/docs")

		assert.Equal(t, "/tmp/docs", c.Root())
		assert.False(t, c.recursive)
		assert.Equal(t, int64(DefaultMaxFileSize), c.maxFileSize)
		assert.Equal(t, DefaultDebounce, c.debounce)
	})

	t.Run("applies options", func(t *testing.T) {
		c := New("/tmp/docs", WithRecursive(true), WithMaxFileSize(42), WithDebounce(time.Second))

		assert.True(t, c.recursive)
		assert.Equal(t, int64(42), c.maxFileSize)
		assert.Equal(t, time.Second, c.debounce)
	})

	t.Run("ignores invalid option values", func(t *testing.T) {
		c := New("/tmp/docs", WithMaxFileSize(0), WithDebounce(-time.Second))

		assert.Equal(t, int64(DefaultMaxFileSize), c.maxFileSize)
		assert.Equal(t, DefaultDebounce, c.debounce)
	})

	t.Run("implements Connector interface", func(t *testing.T) {
		var _ driven.Connector = New("/tmp")
	})
}

func TestConnector_Type(t *testing.T) {
	assert.Equal(t, "filesystem", New("/tmp").Type())
}

func TestConnector_Validate(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		assert.NoError(t, New(t.TempDir()).Validate(context.Background()))
	})

	t.Run("missing directory", func(t *testing.T) {
		err := New(filepath.Join(t.TempDir(), "missing")).Validate(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("file instead of directory", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"a.txt": "a"})

		err := New(filepath.Join(dir, "a.txt")).Validate(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})
}

func TestConnector_FullSync(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":             "alpha",
		"b.md":              "# beta",
		".hidden.txt":       "secret",
		".git/config":       "[core]",
		"sub/c.txt":         "gamma",
		"sub/deeper/d.html": "<p>delta</p>",
	})

	t.Run("top level only by default", func(t *testing.T) {
		docs, errs := New(dir).FullSync(context.Background())

		paths, syncErrs := collect(t, dir, docs, errs)

		assert.Empty(t, syncErrs)
		assert.Equal(t, []string{"a.txt", "b.md"}, paths)
	})

	t.Run("recursive descends and skips hidden", func(t *testing.T) {
		docs, errs := New(dir, WithRecursive(true)).FullSync(context.Background())

		paths, syncErrs := collect(t, dir, docs, errs)

		assert.Empty(t, syncErrs)
		assert.Equal(t, []string{"a.txt", "b.md", "sub/c.txt", "sub/deeper/d.html"}, paths)
	})

	t.Run("content is read", func(t *testing.T) {
		docs, errs := New(dir).FullSync(context.Background())

		var contents []string
		for doc := range docs {
			contents = append(contents, string(doc.Content))
		}
		for range errs {
		}

		assert.ElementsMatch(t, []string{"alpha", "# beta"}, contents)
	})

	t.Run("missing root reports an error", func(t *testing.T) {
		missing := filepath.Join(dir, "nope")
		docs, errs := New(missing).FullSync(context.Background())

		paths, syncErrs := collect(t, missing, docs, errs)

		assert.Empty(t, paths)
		require.Len(t, syncErrs, 1)
		assert.Contains(t, syncErrs[0].Error(), "root path error")
	})
}

func TestConnector_FullSync_OversizedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"small.txt": "ok",
		"big.txt":   strings.Repeat("x", 100),
		"huge.txt":  strings.Repeat("y", 200),
	})

	docs, errs := New(dir, WithMaxFileSize(10)).FullSync(context.Background())
	paths, syncErrs := collect(t, dir, docs, errs)

	assert.Equal(t, []string{"small.txt"}, paths)
	require.Len(t, syncErrs, 2)
	for _, err := range syncErrs {
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestConnector_FullSync_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})
	ctx, cancel := context.WithCancel(context.Background())

	docs, errs := New(dir).FullSync(ctx)
	<-docs
	cancel()

	done := make(chan struct{})
	go func() {
		for range docs {
		}
		for range errs {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("FullSync did not stop after cancel")
	}
}

func TestConnector_ReadFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "alpha"})
	c := New(dir, WithMaxFileSize(3))

	_, err := c.ReadFile(filepath.Join(dir, "a.txt"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err := New(dir).ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(doc.Content))
	assert.Equal(t, filepath.Join(dir, "a.txt"), doc.URI)

	_, err = New(dir).ReadFile(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConnector_Watch(t *testing.T) {
	t.Run("reports create update and delete", func(t *testing.T) {
		dir := t.TempDir()
		c := New(dir, WithDebounce(20*time.Millisecond))
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, "note.txt")
		require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))
		change := nextChange(t, changes, path)
		assert.Equal(t, domain.ChangeCreated, change.Type)
		assert.Equal(t, "first", string(change.Document.Content))

		require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
		change = nextChange(t, changes, path)
		assert.Equal(t, domain.ChangeUpdated, change.Type)
		assert.Equal(t, "second", string(change.Document.Content))

		require.NoError(t, os.Remove(path))
		change = nextChange(t, changes, path)
		assert.Equal(t, domain.ChangeDeleted, change.Type)
		assert.Empty(t, change.Document.Content)
	})

	t.Run("existing files are updates", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"a.txt": "a"})
		c := New(dir, WithDebounce(20*time.Millisecond))
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, "a.txt")
		require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))

		assert.Equal(t, domain.ChangeUpdated, nextChange(t, changes, path).Type)
	})

	t.Run("recursive watches new directories", func(t *testing.T) {
		dir := t.TempDir()
		c := New(dir, WithRecursive(true), WithDebounce(20*time.Millisecond))
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0o755))
		// Give the loop time to add the new directory to the watcher.
		time.Sleep(100 * time.Millisecond)

		path := filepath.Join(sub, "n.txt")
		require.NoError(t, os.WriteFile(path, []byte("nested"), 0o644))

		assert.Equal(t, domain.ChangeCreated, nextChange(t, changes, path).Type)
	})

	t.Run("channel closes on cancel", func(t *testing.T) {
		c := New(t.TempDir())
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := c.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("changes channel not closed")
		}
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "missing")).Watch(context.Background())

		assert.Error(t, err)
	})

	t.Run("second watch is rejected", func(t *testing.T) {
		c := New(t.TempDir())
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, err := c.Watch(ctx)
		require.NoError(t, err)
		_, err = c.Watch(ctx)

		assert.Error(t, err)
	})
}

func TestConnector_Close(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		c := New(t.TempDir())

		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	})

	t.Run("watch after close", func(t *testing.T) {
		c := New(t.TempDir())
		require.NoError(t, c.Close())

		_, err := c.Watch(context.Background())

		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("close ends an active watch", func(t *testing.T) {
		c := New(t.TempDir())
		changes, err := c.Watch(context.Background())
		require.NoError(t, err)

		require.NoError(t, c.Close())

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("changes channel not closed")
		}
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".hidden", true},
		{".git", true},
		{"visible.txt", false},
		{"file.hidden", false},
		{".", false},
		{"..", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.name))
		})
	}
}
