package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ImportService decodes files and hands them to the DocumentService.
type ImportService interface {
	// ImportPaths uploads every file named by paths. Directories are
	// expanded; subdirectories only when opts.Recursive is set.
	ImportPaths(ctx context.Context, paths []string, opts ImportOptions) ([]domain.Document, error)

	// ImportRaw decodes raw and uploads it under id, or a generated ID when empty.
	ImportRaw(ctx context.Context, raw *domain.RawDocument, id string) (*domain.Document, error)

	// Watch keeps the documents under dir in sync until ctx is cancelled.
	// Every handled change is passed to report.
	Watch(ctx context.Context, dir string, opts ImportOptions, report func(WatchEvent)) error
}

// ImportOptions configures ImportPaths and Watch.
type ImportOptions struct {
	// Recursive descends into subdirectories.
	Recursive bool

	// ID overrides the document ID. Only valid for a single file.
	ID string
}

// WatchEvent describes one change applied by Watch.
type WatchEvent struct {
	// Path is the file that changed.
	Path string

	// Change is the kind of change.
	Change domain.ChangeType

	// Document is the resulting document. Nil for deletions and decode failures.
	Document *domain.Document

	// Err is set when the change could not be applied.
	Err error
}
