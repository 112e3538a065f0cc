package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService manages uploaded documents and their ingestion.
type DocumentService interface {
	// Upload stores and ingests a single document. The returned document
	// reflects the final lifecycle state even when an error is returned.
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)

	// UploadBatch ingests several documents. Results keep input order and
	// the error joins every per-document failure.
	UploadBatch(ctx context.Context, reqs []UploadRequest) ([]domain.Document, error)

	// Remove deletes a document and every chunk derived from it.
	Remove(ctx context.Context, documentID string) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns all documents, oldest first.
	List(ctx context.Context) ([]domain.Document, error)

	// GetContent returns the decoded text of a document.
	GetContent(ctx context.Context, documentID string) (string, error)
}

// UploadRequest describes a document to ingest.
type UploadRequest struct {
	// ID is optional. A uuid is generated when empty.
	ID string

	// Name is the display name used in the Sources line.
	Name string

	// Content is the decoded text.
	Content string

	// MIMEType is the type the text was decoded from.
	MIMEType string
}
