package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	AnswerFunc func(ctx context.Context, query string, opts domain.QueryOptions) (*domain.Answer, error)
}

func (m *MockQueryService) Answer(ctx context.Context, query string, opts domain.QueryOptions) (*domain.Answer, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, query, opts)
	}
	return domain.Fallback(domain.OutcomeNoDocuments, nil), nil
}

func (m *MockQueryService) Search(_ context.Context, _ string, _ domain.QueryOptions) ([]domain.SearchResult, error) {
	return nil, nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	ListFunc       func(ctx context.Context) ([]domain.Document, error)
	GetContentFunc func(ctx context.Context, documentID string) (string, error)
}

func (m *MockDocumentService) Upload(_ context.Context, _ driving.UploadRequest) (*domain.Document, error) {
	return nil, nil
}

func (m *MockDocumentService) UploadBatch(_ context.Context, _ []driving.UploadRequest) ([]domain.Document, error) {
	return nil, nil
}

func (m *MockDocumentService) Remove(_ context.Context, _ string) error {
	return nil
}

func (m *MockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, nil
}

func (m *MockDocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockDocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	if m.GetContentFunc != nil {
		return m.GetContentFunc(ctx, documentID)
	}
	return "", nil
}

func TestNewPorts(t *testing.T) {
	query := &MockQueryService{}
	docs := &MockDocumentService{}

	ports := NewPorts(query, docs)

	require.NotNil(t, ports)
	assert.Equal(t, query, ports.Query)
	assert.Equal(t, docs, ports.Document)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing query", &Ports{Document: &MockDocumentService{}}, ErrMissingQueryService},
		{"query only", &Ports{Query: &MockQueryService{}}, nil},
		{"all ports", NewPorts(&MockQueryService{}, &MockDocumentService{}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPortErrors(t *testing.T) {
	assert.NotEqual(t, ErrMissingQueryService, ErrInvalidPorts)
	assert.Contains(t, ErrMissingQueryService.Error(), "query service")
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
