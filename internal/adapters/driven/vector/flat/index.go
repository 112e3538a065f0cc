// Package flat provides an exact, in-memory vector index.
//
// Search is a linear scan over every chunk. That is the intended behaviour
// for the document counts docqa handles; there is no approximate index.
package flat

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an ordered, in-memory list of embedded chunks.
//
// Writers never modify the backing array in place: every mutation publishes
// a fresh slice. Readers copy the slice header under the read lock and score
// without holding it.
type Index struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	dims   int
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Add appends chunks after validating every embedding.
func (i *Index) Add(ctx context.Context, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	dims, err := validate(chunks, i.dims)
	if err != nil {
		return err
	}

	next := make([]domain.Chunk, 0, len(i.chunks)+len(chunks))
	next = append(next, i.chunks...)
	next = append(next, chunks...)

	i.chunks = next
	i.dims = dims
	return nil
}

// ReplaceDocument removes the document's existing chunks and appends the new
// ones in a single step. Readers see either the old set or the new set.
func (i *Index) ReplaceDocument(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	kept := make([]domain.Chunk, 0, len(i.chunks)+len(chunks))
	for idx := range i.chunks {
		if i.chunks[idx].DocumentID != documentID {
			kept = append(kept, i.chunks[idx])
		}
	}

	// The dimension is only fixed by chunks that remain.
	dims := i.dims
	if len(kept) == 0 {
		dims = 0
	}

	if len(chunks) > 0 {
		var err error
		dims, err = validate(chunks, dims)
		if err != nil {
			return err
		}
	}

	removed := len(i.chunks) - len(kept)
	i.chunks = append(kept, chunks...)
	i.dims = dims

	logger.Debug("Index: replaced %d chunks of %s with %d", removed, documentID, len(chunks))
	return nil
}

// Search ranks every chunk by cosine similarity to query and returns the
// best k. Equal scores keep insertion order.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.mu.RLock()
	snapshot := i.chunks
	dims := i.dims
	i.mu.RUnlock()

	if k <= 0 || len(snapshot) == 0 {
		return nil, nil
	}
	if len(query) != dims {
		return nil, &domain.IndexInvariantError{Expected: dims, Got: len(query)}
	}

	results := make([]domain.SearchResult, len(snapshot))
	for idx := range snapshot {
		results[idx] = domain.SearchResult{
			Chunk: snapshot[idx],
			Score: CosineSimilarity(query, snapshot[idx].Embedding),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// RemoveByDocumentID deletes every chunk of a document.
// Returns the number removed; zero is not an error.
func (i *Index) RemoveByDocumentID(_ context.Context, documentID string) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	kept := make([]domain.Chunk, 0, len(i.chunks))
	for idx := range i.chunks {
		if i.chunks[idx].DocumentID != documentID {
			kept = append(kept, i.chunks[idx])
		}
	}

	removed := len(i.chunks) - len(kept)
	if removed == 0 {
		return 0
	}

	i.chunks = kept
	if len(kept) == 0 {
		i.dims = 0
	}
	return removed
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.chunks)
}

// Dimensions returns the embedding dimension, or 0 when empty.
func (i *Index) Dimensions() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dims
}

// validate checks every embedding against dims, or against the first
// embedding when dims is 0. Returns the dimension the batch establishes.
func validate(chunks []domain.Chunk, dims int) (int, error) {
	for idx := range chunks {
		got := len(chunks[idx].Embedding)
		if dims == 0 && got > 0 {
			dims = got
		}
		if got == 0 || got != dims {
			return 0, &domain.IndexInvariantError{Expected: dims, Got: got}
		}
	}
	return dims, nil
}
