package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QueryService answers questions from indexed documents.
type QueryService interface {
	// Answer retrieves the most relevant chunks and generates a grounded
	// answer. Fallback outcomes are returned as an Answer, not an error;
	// the error is reserved for invalid input and cancellation.
	Answer(ctx context.Context, query string, opts domain.QueryOptions) (*domain.Answer, error)

	// Search returns the ranked chunks for query without generating an answer.
	Search(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.SearchResult, error)
}
