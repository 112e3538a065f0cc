package domain

import (
	"fmt"
	"time"
)

// LifecycleState tracks a document through ingestion.
type LifecycleState string

// Document lifecycle states.
const (
	// StateUploaded is a document that has been received but not processed.
	StateUploaded LifecycleState = "uploaded"

	// StateProcessing is a document being split, embedded and indexed.
	StateProcessing LifecycleState = "processing"

	// StateIndexed is a document whose chunks are searchable.
	StateIndexed LifecycleState = "indexed"

	// StateFailed is a document whose ingestion failed. It has no chunks.
	StateFailed LifecycleState = "failed"
)

// IsValid returns true if the state is recognised.
func (s LifecycleState) IsValid() bool {
	switch s {
	case StateUploaded, StateProcessing, StateIndexed, StateFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once ingestion has finished, successfully or not.
func (s LifecycleState) IsTerminal() bool {
	return s == StateIndexed || s == StateFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
// Any state may restart at uploaded, which is how a re-upload begins.
func (s LifecycleState) CanTransitionTo(next LifecycleState) bool {
	if next == StateUploaded {
		return true
	}
	switch s {
	case StateUploaded:
		return next == StateProcessing
	case StateProcessing:
		return next == StateIndexed || next == StateFailed
	default:
		return false
	}
}

// String returns the string representation.
func (s LifecycleState) String() string {
	return string(s)
}

// Document represents an uploaded document.
// Content is immutable once created; re-uploading starts a new ingestion.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable name, usually the file name.
	Name string

	// Content is the decoded text of the document.
	Content string

	// MIMEType is the content type the text was decoded from.
	MIMEType string

	// State is the current lifecycle state.
	State LifecycleState

	// ChunkCount is the number of indexed chunks.
	ChunkCount int

	// Error holds the failure message when State is failed.
	Error string

	// CreatedAt is when the document was first uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time
}

// Transition moves the document to the next lifecycle state.
func (d *Document) Transition(next LifecycleState) error {
	if !d.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move document %s from %s to %s",
			ErrInvalidInput, d.ID, d.State, next)
	}
	d.State = next
	d.UpdatedAt = time.Now()
	return nil
}

// Chunk represents a retrievable unit within a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// DocumentName is copied from the parent so answers can cite it.
	DocumentName string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// ChunkID builds the identifier for the chunk at position within a document.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, position)
}
