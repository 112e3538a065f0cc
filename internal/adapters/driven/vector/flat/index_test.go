package flat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func chunk(docID string, pos int, emb ...float32) domain.Chunk {
	return domain.Chunk{
		ID:         domain.ChunkID(docID, pos),
		DocumentID: docID,
		Position:   pos,
		Content:    fmt.Sprintf("%s-%d", docID, pos),
		Embedding:  emb,
	}
}

func TestIndex_AddEstablishesDimension(t *testing.T) {
	idx := New()
	ctx := context.Background()

	assert.Equal(t, 0, idx.Dimensions())
	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("a", 0, 1, 0, 0)}))

	assert.Equal(t, 3, idx.Dimensions())
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_AddRejectsMismatchedBatch(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("a", 0, 1, 0, 0)}))

	err := idx.Add(ctx, []domain.Chunk{
		chunk("b", 0, 1, 1, 1),
		chunk("b", 1, 1, 1),
	})

	var inv *domain.IndexInvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 3, inv.Expected)
	assert.Equal(t, 2, inv.Got)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	// Nothing from the rejected batch was added.
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_AddRejectsInconsistentFirstBatch(t *testing.T) {
	idx := New()

	err := idx.Add(context.Background(), []domain.Chunk{
		chunk("a", 0, 1, 2),
		chunk("a", 1, 1, 2, 3),
	})

	require.Error(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Dimensions())
}

func TestIndex_AddRejectsEmptyEmbedding(t *testing.T) {
	idx := New()

	err := idx.Add(context.Background(), []domain.Chunk{chunk("a", 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_SearchOrdersByScore(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", 0, 0, 1),
		chunk("b", 0, 1, 0),
		chunk("c", 0, 1, 1),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "b", results[0].Chunk.DocumentID)
	assert.Equal(t, "c", results[1].Chunk.DocumentID)
	assert.Equal(t, "a", results[2].Chunk.DocumentID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestIndex_SearchLimitsToK(t *testing.T) {
	idx := New()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("d", i, float32(i+1), 1)}))
	}

	results, err := idx.Search(ctx, []float32{1, 1}, 4)
	require.NoError(t, err)
	assert.Len(t, results, 4)

	results, err = idx.Search(ctx, []float32{1, 1}, 50)
	require.NoError(t, err)
	assert.Len(t, results, 10)

	results, err = idx.Search(ctx, []float32{1, 1}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_SearchTiesKeepInsertionOrder(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("first", 0, 1, 1),
		chunk("second", 0, 1, 1),
		chunk("third", 0, 1, 1),
	}))

	results, err := idx.Search(ctx, []float32{1, 1}, 3)
	require.NoError(t, err)

	assert.Equal(t, "first", results[0].Chunk.DocumentID)
	assert.Equal(t, "second", results[1].Chunk.DocumentID)
	assert.Equal(t, "third", results[2].Chunk.DocumentID)
}

func TestIndex_SearchZeroQueryRanksLast(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("zero", 0, 0, 0),
		chunk("real", 0, 1, 0),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "real", results[0].Chunk.DocumentID)
	assert.Equal(t, "zero", results[1].Chunk.DocumentID)
}

func TestIndex_SearchEmpty(t *testing.T) {
	results, err := New().Search(context.Background(), []float32{1, 2}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_SearchDimensionMismatch(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("a", 0, 1, 0, 0)}))

	_, err := idx.Search(ctx, []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_SearchCancelled(t *testing.T) {
	idx := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_RemoveByDocumentID(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", 0, 1, 0),
		chunk("b", 0, 0, 1),
		chunk("a", 1, 1, 1),
	}))

	assert.Equal(t, 2, idx.RemoveByDocumentID(ctx, "a"))
	assert.Equal(t, 1, idx.Len())

	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "a", r.Chunk.DocumentID)
	}

	assert.Equal(t, 0, idx.RemoveByDocumentID(ctx, "missing"))
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_RemoveLastResetsDimension(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("a", 0, 1, 0)}))

	idx.RemoveByDocumentID(ctx, "a")
	assert.Equal(t, 0, idx.Dimensions())

	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("b", 0, 1, 2, 3)}))
	assert.Equal(t, 3, idx.Dimensions())
}

func TestIndex_ReplaceDocument(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", 0, 1, 0),
		chunk("a", 1, 1, 0),
		chunk("b", 0, 0, 1),
	}))

	require.NoError(t, idx.ReplaceDocument(ctx, "a", []domain.Chunk{chunk("a", 0, 0.5, 0.5)}))

	assert.Equal(t, 2, idx.Len())
	results, err := idx.Search(ctx, []float32{1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.DocumentID)
}

func TestIndex_ReplaceDocumentRejectedLeavesOldChunks(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", 0, 1, 0),
		chunk("b", 0, 0, 1),
	}))

	err := idx.ReplaceDocument(ctx, "a", []domain.Chunk{chunk("a", 0, 1, 2, 3)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 2, idx.Len())
}

func TestIndex_ReplaceOnlyDocumentMayChangeDimension(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("a", 0, 1, 0)}))

	require.NoError(t, idx.ReplaceDocument(ctx, "a", []domain.Chunk{chunk("a", 0, 1, 2, 3)}))
	assert.Equal(t, 3, idx.Dimensions())
}

func TestIndex_ReplaceWithNothingRemoves(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("a", 0, 1, 0)}))

	require.NoError(t, idx.ReplaceDocument(ctx, "a", nil))
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Dimensions())
}

func TestIndex_ConcurrentSearchAndMutation(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []domain.Chunk{chunk("seed", 0, 1, 1)}))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("doc-%d", w)
				_ = idx.ReplaceDocument(ctx, id, []domain.Chunk{chunk(id, 0, float32(i), 1)})
				if i%5 == 0 {
					idx.RemoveByDocumentID(ctx, id)
				}
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				results, err := idx.Search(ctx, []float32{1, 1}, 3)
				assert.NoError(t, err)
				assert.LessOrEqual(t, len(results), 3)
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, idx.Len(), 1)
}
