package sqlite

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, driven.DocumentStore) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store, store.DocumentStore()
}

func testDocument(id string, created time.Time) *domain.Document {
	return &domain.Document{
		ID:        id,
		Name:      id + ".txt",
		Content:   "content of " + id,
		MIMEType:  "text/plain",
		State:     domain.StateUploaded,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func testChunks(docID string, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(docID, i),
			DocumentID: docID,
			Content:    fmt.Sprintf("chunk %d", i),
			Position:   i,
			Embedding:  []float32{float32(i), 0.5, -1.25},
		}
	}
	return chunks
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Contains(t, store.Path(), "metadata.db")
	require.NoError(t, store.Close())

	// Reopening skips applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	doc := testDocument("doc-1", now)
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1.txt", got.Name)
	assert.Equal(t, "content of doc-1", got.Content)
	assert.Equal(t, "text/plain", got.MIMEType)
	assert.Equal(t, domain.StateUploaded, got.State)
	assert.True(t, got.CreatedAt.Equal(now))

	doc.State = domain.StateFailed
	doc.Error = "embed: boom"
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err = docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, got.State)
	assert.Equal(t, "embed: boom", got.Error)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	_, docs := setupTestStore(t)

	_, err := docs.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SaveChunks(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", time.Now())))

	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1", 3)))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, "doc-1.txt", c.DocumentName)
		assert.Equal(t, []float32{float32(i), 0.5, -1.25}, c.Embedding)
	}
}

func TestDocumentStore_SaveChunks_Replaces(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", time.Now())))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1", 4)))

	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1", 2)))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	require.NoError(t, docs.SaveChunks(ctx, "doc-1", nil))
	chunks, err = docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_SaveChunks_UnknownDocument(t *testing.T) {
	_, docs := setupTestStore(t)

	err := docs.SaveChunks(context.Background(), "ghost", testChunks("ghost", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeleteDocument_CascadesChunks(t *testing.T) {
	store, docs := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", time.Now())))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1", 3)))

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&count))
	assert.Zero(t, count)

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, docs.DeleteDocument(ctx, "doc-1"))
}

func TestDocumentStore_DeleteChunks(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", time.Now())))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1", 2)))

	require.NoError(t, docs.DeleteChunks(ctx, "doc-1"))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	_, err = docs.GetDocument(ctx, "doc-1")
	assert.NoError(t, err)
}

func TestDocumentStore_ListDocuments_OldestFirst(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, docs.SaveDocument(ctx, testDocument("c", base.Add(2*time.Hour))))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("a", base)))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("b", base.Add(time.Hour))))

	list, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "c", list[2].ID)
}

func TestDocumentStore_ListDocuments_Empty(t *testing.T) {
	_, docs := setupTestStore(t)

	list, err := docs.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVectorCodec(t *testing.T) {
	in := []float32{1, -2.5, 3.1415927, 0}
	blob := encodeVector(in)
	assert.Len(t, blob, 16)
	assert.Equal(t, in, decodeVector(blob))

	assert.Nil(t, encodeVector(nil))
	assert.Nil(t, decodeVector(nil))
	assert.Equal(t, []float32{1}, decodeVector(append(encodeVector([]float32{1}), 0xAA)))
}

func TestPendingMigrations(t *testing.T) {
	all, err := pendingMigrations(migrationFiles, 0)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].version)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].version, all[i].version)
	}

	none, err := pendingMigrations(migrationFiles, all[len(all)-1].version)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPendingMigrations_BadName(t *testing.T) {
	fsys := fstest.MapFS{"migrations/initial.up.sql": {Data: []byte("SELECT 1")}}
	_, err := pendingMigrations(fsys, 0)
	assert.ErrorContains(t, err, "missing version prefix")
}

func TestMigrate_RecordsVersion(t *testing.T) {
	store, _ := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, migrate(store.db), "re-running is a no-op")
}
