package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex holds chunk embeddings and ranks them against a query.
// Every chunk in the index shares one embedding dimension, fixed by the
// first insert and reset when the index becomes empty.
type VectorIndex interface {
	// Add appends chunks. The whole batch is rejected with
	// *domain.IndexInvariantError if any embedding has the wrong dimension.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// ReplaceDocument swaps every chunk of documentID for chunks in one step.
	ReplaceDocument(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// Search returns at most k chunks ordered by descending cosine similarity.
	// Ties keep insertion order.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error)

	// RemoveByDocumentID deletes every chunk of a document and returns how many were removed.
	RemoveByDocumentID(ctx context.Context, documentID string) int

	// Len returns the number of indexed chunks.
	Len() int

	// Dimensions returns the index dimension, or 0 when empty.
	Dimensions() int
}
