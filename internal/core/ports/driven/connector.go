package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Connector reads files under a root directory.
type Connector interface {
	Type() string
	Root() string

	// Validate fails when the root is missing or unreadable.
	Validate(ctx context.Context) error

	// FullSync walks the root once. Both channels close when the walk ends
	// or ctx is done.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch streams changes under the root until ctx is done.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	Close() error
}
