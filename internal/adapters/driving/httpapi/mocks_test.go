package httpapi

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer  *domain.Answer
	results []domain.SearchResult
	err     error

	lastQuery string
	lastOpts  domain.QueryOptions
}

func (m *mockQueryService) Answer(
	_ context.Context,
	query string,
	opts domain.QueryOptions,
) (*domain.Answer, error) {
	m.lastQuery, m.lastOpts = query, opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockQueryService) Search(
	_ context.Context,
	query string,
	opts domain.QueryOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery, m.lastOpts = query, opts
	return m.results, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	err       error

	uploaded []driving.UploadRequest
	removed  []string
}

func (m *mockDocumentService) Upload(_ context.Context, req driving.UploadRequest) (*domain.Document, error) {
	m.uploaded = append(m.uploaded, req)
	return m.document, m.err
}

func (m *mockDocumentService) UploadBatch(_ context.Context, reqs []driving.UploadRequest) ([]domain.Document, error) {
	m.uploaded = append(m.uploaded, reqs...)
	return m.documents, m.err
}

func (m *mockDocumentService) Remove(_ context.Context, id string) error {
	m.removed = append(m.removed, id)
	return m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

// mockImportService is a mock implementation of driving.ImportService.
type mockImportService struct {
	document *domain.Document
	err      error

	lastRaw *domain.RawDocument
	lastID  string
}

func (m *mockImportService) ImportPaths(
	_ context.Context,
	_ []string,
	_ driving.ImportOptions,
) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockImportService) ImportRaw(_ context.Context, raw *domain.RawDocument, id string) (*domain.Document, error) {
	m.lastRaw, m.lastID = raw, id
	return m.document, m.err
}

func (m *mockImportService) Watch(
	_ context.Context,
	_ string,
	_ driving.ImportOptions,
	_ func(driving.WatchEvent),
) error {
	return m.err
}
