package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestResolveHome(t *testing.T) {
	t.Setenv("DOCQA_HOME", "/env/home")

	home, err := resolveHome("/flag/home")
	require.NoError(t, err)
	assert.Equal(t, "/flag/home", home)

	home, err = resolveHome("")
	require.NoError(t, err)
	assert.Equal(t, "/env/home", home)

	t.Setenv("DOCQA_HOME", "")
	home, err = resolveHome("")
	require.NoError(t, err)
	assert.Equal(t, ".docqa", filepath.Base(home))
}

func TestOpenStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := openStore(domain.StorageMemory, "")
		require.NoError(t, err)
		assert.NotNil(t, store)
		assert.NoError(t, closeFn())
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		store, closeFn, err := openStore(domain.StorageSQLite, dir)
		require.NoError(t, err)
		defer closeFn() //nolint:errcheck // test cleanup

		docs, err := store.ListDocuments(context.Background())
		require.NoError(t, err)
		assert.Empty(t, docs)
		assert.FileExists(t, filepath.Join(dir, "metadata.db"))
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := openStore("postgres", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage backend")
	})
}

func TestBootstrap_MemoryBackend(t *testing.T) {
	gokeyring.MockInit()
	home := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	svc, err := bootstrap(context.Background(), home)
	require.NoError(t, err)
	require.NoError(t, svc.Settings.Set("storage.backend", "memory"))
	require.NoError(t, svc.Close())

	svc, err = bootstrap(context.Background(), home)
	require.NoError(t, err)
	defer svc.Close() //nolint:errcheck // test cleanup

	docs, err := svc.Document.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.FileExists(t, filepath.Join(home, "config.toml"))
}
