package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no normaliser can decode.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyDocument indicates a document with no text to index.
	ErrEmptyDocument = errors.New("document has no text content")

	// ErrDimensionMismatch indicates an embedding whose size differs from the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// Ingestion stages reported by IngestionError.
const (
	StageSplit   = "split"
	StageEmbed   = "embed"
	StageIndex   = "index"
	StagePersist = "persist"
)

// IngestionError is returned when a document could not be split, embedded,
// indexed or persisted. None of the document's chunks are searchable afterwards.
type IngestionError struct {
	DocumentID string
	Stage      string
	Err        error
}

func (e *IngestionError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("ingest %s: %v", e.DocumentID, e.Err)
	}
	return fmt.Sprintf("ingest %s (%s): %v", e.DocumentID, e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// QueryEmbeddingError is returned when a question could not be embedded.
type QueryEmbeddingError struct {
	Err error
}

func (e *QueryEmbeddingError) Error() string {
	return fmt.Sprintf("embed query: %v", e.Err)
}

func (e *QueryEmbeddingError) Unwrap() error { return e.Err }

// GenerationError is returned when the answer could not be generated.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate answer: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IndexInvariantError is returned when an embedding's dimension does not
// match the dimension the index was built with.
type IndexInvariantError struct {
	Expected int
	Got      int
}

func (e *IndexInvariantError) Error() string {
	return fmt.Sprintf("%v: index has %d dimensions, got %d", ErrDimensionMismatch, e.Expected, e.Got)
}

func (e *IndexInvariantError) Unwrap() error { return ErrDimensionMismatch }
