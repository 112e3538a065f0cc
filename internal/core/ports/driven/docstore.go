package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentStore persists documents and their chunks. GetDocument returns
// domain.ErrNotFound for an unknown ID; the delete methods do not.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks replaces every chunk of the document. An empty slice
	// leaves it with none.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks orders by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	DeleteChunks(ctx context.Context, documentID string) error

	// DeleteDocument also deletes the chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments orders by creation time, oldest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
