package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

type entry struct {
	doc    domain.Document
	chunks []domain.Chunk
}

// DocumentStore keeps documents and their chunks in a map. It backs the
// "memory" storage setting and tests; nothing outlives the process.
// Values are copied in and out so callers never share backing arrays.
type DocumentStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{entries: map[string]*entry{}}
}

func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[doc.ID]; ok {
		e.doc = *doc
		return nil
	}
	s.entries[doc.ID] = &entry{doc: *doc}
	return nil
}

// SaveChunks replaces the document's chunks. The document must exist.
func (s *DocumentStore) SaveChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	e.chunks = cloneChunks(chunks)
	return nil
}

func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := e.doc
	return &doc, nil
}

// GetChunks returns the chunks in position order, with DocumentName
// taken from the current document.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[documentID]
	if !ok || len(e.chunks) == 0 {
		return nil, nil
	}
	out := cloneChunks(e.chunks)
	for i := range out {
		out[i].DocumentName = e.doc.Name
	}
	slices.SortFunc(out, func(a, b domain.Chunk) int { return cmp.Compare(a.Position, b.Position) })
	return out, nil
}

func (s *DocumentStore) DeleteChunks(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[documentID]; ok {
		e.chunks = nil
	}
	return nil
}

func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// ListDocuments orders by CreatedAt, then ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	out := make([]domain.Document, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.doc)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Document) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func cloneChunks(in []domain.Chunk) []domain.Chunk {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Chunk, len(in))
	for i, c := range in {
		c.Embedding = slices.Clone(c.Embedding)
		out[i] = c
	}
	return out
}
