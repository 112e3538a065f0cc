package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService tracks uploaded documents through their lifecycle and
// hands them to the orchestrator for ingestion.
type DocumentService struct {
	docStore     driven.DocumentStore
	vectorIndex  driven.VectorIndex
	orchestrator *RetrievalOrchestrator
	workers      int
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*DocumentService)

// WithWorkers sets how many documents UploadBatch ingests at once.
// Values below one mean sequential.
func WithWorkers(n int) DocumentOption {
	return func(s *DocumentService) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	orchestrator *RetrievalOrchestrator,
	opts ...DocumentOption,
) *DocumentService {
	s := &DocumentService{
		docStore:     docStore,
		vectorIndex:  vectorIndex,
		orchestrator: orchestrator,
		workers:      1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores req and ingests it. The returned document is in its final
// state (indexed or failed) and the error, if any, is the ingestion failure.
func (s *DocumentService) Upload(ctx context.Context, req driving.UploadRequest) (*domain.Document, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &domain.Document{
		ID:        req.ID,
		Name:      req.Name,
		Content:   req.Content,
		MIMEType:  req.MIMEType,
		State:     domain.StateUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	} else if existing, err := s.docStore.GetDocument(ctx, doc.ID); err == nil {
		doc.CreatedAt = existing.CreatedAt
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.transition(ctx, doc, domain.StateProcessing); err != nil {
		return nil, err
	}

	chunks, ingestErr := s.orchestrator.IngestDocument(ctx, doc)
	if ingestErr != nil {
		// Failed documents carry no chunks, including any earlier generation.
		s.vectorIndex.RemoveByDocumentID(ctx, doc.ID)
		persistCtx := context.WithoutCancel(ctx)
		if err := s.docStore.DeleteChunks(persistCtx, doc.ID); err != nil {
			logger.Warn("delete chunks for %s: %v", doc.ID, err)
		}
		doc.ChunkCount = 0
		doc.Error = ingestErr.Error()
		if err := s.transition(persistCtx, doc, domain.StateFailed); err != nil {
			return doc, errors.Join(ingestErr, err)
		}
		return doc, ingestErr
	}

	doc.ChunkCount = len(chunks)
	doc.Error = ""
	if err := s.transition(context.WithoutCancel(ctx), doc, domain.StateIndexed); err != nil {
		return doc, err
	}
	return doc, nil
}

// UploadBatch uploads reqs, sequentially unless workers were configured.
// Results keep input order; entries for documents that were never
// scheduled because ctx was cancelled are omitted.
func (s *DocumentService) UploadBatch(ctx context.Context, reqs []driving.UploadRequest) ([]domain.Document, error) {
	logger.Section("Upload")
	logger.Debug("Batch of %d documents, %d workers", len(reqs), s.workers)

	docs := make([]*domain.Document, len(reqs))
	errs := make([]error, len(reqs))

	if s.workers <= 1 {
		for i := range reqs {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				break
			}
			docs[i], errs[i] = s.Upload(ctx, reqs[i])
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for range min(s.workers, len(reqs)) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					docs[i], errs[i] = s.Upload(ctx, reqs[i])
				}
			}()
		}

	schedule:
		for i := range reqs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				break schedule
			}
		}
		close(jobs)
		wg.Wait()
	}

	results := make([]domain.Document, 0, len(reqs))
	for _, doc := range docs {
		if doc != nil {
			results = append(results, *doc)
		}
	}
	return results, errors.Join(errs...)
}

// Remove deletes a document, its chunks and its index entries.
func (s *DocumentService) Remove(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}
	removed := s.vectorIndex.RemoveByDocumentID(ctx, documentID)
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Debug("Removed %s (%d chunks)", documentID, removed)
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// List returns every document, oldest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// GetContent returns the decoded text of a document.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

func (s *DocumentService) transition(ctx context.Context, doc *domain.Document, next domain.LifecycleState) error {
	if err := doc.Transition(next); err != nil {
		return err
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	logger.Debug("Document %s is %s", doc.ID, doc.State)
	return nil
}
