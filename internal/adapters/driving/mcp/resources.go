package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	resourceHost     = "documents"
	documentsURI     = "docqa://" + resourceHost
	documentTemplate = documentsURI + "/{documentId}"
)

func (s *Server) registerResources() {
	if s.ports.Document == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Title:       "Uploaded documents",
		Description: "Every uploaded document with its ingestion state",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentTemplate,
		Name:        "document-content",
		Title:       "Document text",
		Description: "The decoded text of one document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	out := make([]DocumentOutput, 0, len(docs))
	for i := range docs {
		out = append(out, toDocumentOutput(&docs[i]))
	}
	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding documents: %w", err)
	}
	return contents(req.Params.URI, "application/json", string(body)), nil
}

func (s *Server) handleDocumentContentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id := extractDocumentID(uri)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	text, err := s.ports.Document.GetContent(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, mcp.ResourceNotFoundError(uri)
	case err != nil:
		return nil, fmt.Errorf("getting document content: %w", err)
	}
	return contents(uri, "text/plain", text), nil
}

func contents(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeType, Text: text}},
	}
}

// extractDocumentID returns the ID in docqa://documents/{id}, or "" when
// uri is anything else. IDs may be percent-encoded.
func extractDocumentID(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "docqa" || u.Host != resourceHost {
		return ""
	}
	if len(u.Path) < 2 || u.Path[0] != '/' {
		return ""
	}
	id := u.Path[1:]
	for _, r := range id {
		if r == '/' {
			return ""
		}
	}
	return id
}
