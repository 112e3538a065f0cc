package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to use as context (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Text    string   `json:"text"`
	Answer  string   `json:"answer,omitempty"`
	Sources []string `json:"sources"`
	Outcome string   `json:"outcome"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Position     int     `json:"position"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

// UploadInput is the input schema for the upload_document tool.
type UploadInput struct {
	Name     string `json:"name" jsonschema:"display name of the document, shown in answer sources"`
	Content  string `json:"content" jsonschema:"the document text"`
	ID       string `json:"id,omitempty" jsonschema:"document ID; uploading an existing ID replaces it"`
	MIMEType string `json:"mime_type,omitempty" jsonschema:"content type of the original file"`
}

// DocumentOutput describes one document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MIMEType   string `json:"mime_type,omitempty"`
	State      string `json:"state"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// RemoveInput is the input schema for the remove_document tool.
type RemoveInput struct {
	DocumentID string `json:"document_id" jsonschema:"ID of the document to remove"`
}

// RemoveOutput is the output schema for the remove_document tool.
type RemoveOutput struct {
	DocumentID string `json:"document_id"`
	Removed    bool   `json:"removed"`
}

// ListInput is the input schema for the list_documents tool.
type ListInput struct{}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

const defaultSearchTopK = 5

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents, citing the source documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the indexed chunks most similar to a query",
	}, s.handleSearch)

	if s.ports.Document == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Add or replace a text document and index it",
	}, s.handleUpload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_document",
		Description: "Remove a document and all of its chunks from the index",
	}, s.handleRemove)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List uploaded documents with their indexing state",
	}, s.handleList)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	answer, err := s.ports.Query.Answer(ctx, input.Question, domain.QueryOptions{TopK: input.TopK})
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return nil, AskOutput{
		Text:    answer.Text,
		Answer:  answer.Answer,
		Sources: sources,
		Outcome: string(answer.Outcome),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	results, err := s.ports.Query.Search(ctx, input.Query, domain.QueryOptions{TopK: topK})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID:   results[i].Chunk.DocumentID,
			DocumentName: results[i].Chunk.DocumentName,
			Position:     results[i].Chunk.Position,
			Score:        results[i].Score,
			Content:      results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleUpload handles the upload_document tool invocation.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Document.Upload(ctx, driving.UploadRequest{
		ID:       input.ID,
		Name:     input.Name,
		Content:  input.Content,
		MIMEType: input.MIMEType,
	})
	if err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("upload %q: %w", input.Name, err)
	}
	return nil, toDocumentOutput(doc), nil
}

// handleRemove handles the remove_document tool invocation.
func (s *Server) handleRemove(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveInput,
) (*mcp.CallToolResult, RemoveOutput, error) {
	if err := s.ports.Document.Remove(ctx, input.DocumentID); err != nil {
		return nil, RemoveOutput{}, err
	}
	return nil, RemoveOutput{DocumentID: input.DocumentID, Removed: true}, nil
}

// handleList handles the list_documents tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         doc.ID,
		Name:       doc.Name,
		MIMEType:   doc.MIMEType,
		State:      doc.State.String(),
		ChunkCount: doc.ChunkCount,
		Error:      doc.Error,
		CreatedAt:  doc.CreatedAt.Format(time.RFC3339),
	}
}
