package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// documentJSON is the wire form of a document.
type documentJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MIMEType   string `json:"mime_type,omitempty"`
	State      string `json:"state"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
	Content    string `json:"content,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toDocumentJSON(doc *domain.Document, withContent bool) documentJSON {
	out := documentJSON{
		ID:         doc.ID,
		Name:       doc.Name,
		MIMEType:   doc.MIMEType,
		State:      doc.State.String(),
		ChunkCount: doc.ChunkCount,
		Error:      doc.Error,
		CreatedAt:  doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  doc.UpdatedAt.Format(time.RFC3339),
	}
	if withContent {
		out.Content = doc.Content
	}
	return out
}

// uploadRequest is the JSON body of POST /api/documents.
type uploadRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	MIMEType string `json:"mime_type"`
}

// queryRequest is the JSON body of /api/ask and /api/search.
type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// resultJSON is the wire form of a search result.
type resultJSON struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkID      string  `json:"chunk_id"`
	Position     int     `json:"position"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

func toResultsJSON(results []domain.SearchResult) []resultJSON {
	out := make([]resultJSON, len(results))
	for i := range results {
		out[i] = resultJSON{
			DocumentID:   results[i].Chunk.DocumentID,
			DocumentName: results[i].Chunk.DocumentName,
			ChunkID:      results[i].Chunk.ID,
			Position:     results[i].Chunk.Position,
			Score:        results[i].Score,
			Content:      results[i].Chunk.Content,
		}
	}
	return out
}

// askResponse is the body returned by /api/ask.
type askResponse struct {
	Text    string       `json:"text"`
	Answer  string       `json:"answer"`
	Sources []string     `json:"sources"`
	Outcome string       `json:"outcome"`
	Results []resultJSON `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Document.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]documentJSON, len(docs))
	for i := range docs {
		out[i] = toDocumentJSON(&docs[i], false)
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out, "count": len(out)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ports.Document.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentJSON(doc, true))
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Document.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadDocument accepts either a JSON body with decoded text or a
// multipart form whose "file" part is decoded by the normaliser registry.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		doc *domain.Document
		err error
	)
	switch mediaType {
	case "multipart/form-data":
		doc, err = s.uploadMultipart(r)
	case "application/json", "":
		doc, err = s.uploadJSON(r)
	default:
		writeError(w, fmt.Errorf("%w: content type %q", errUnsupportedMedia, mediaType))
		return
	}

	if err != nil {
		if doc != nil {
			// Ingestion ran and failed; report the failed document too.
			writeJSON(w, statusFor(err), map[string]any{
				"error":    err.Error(),
				"document": toDocumentJSON(doc, false),
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentJSON(doc, false))
}

func (s *Server) uploadJSON(r *http.Request) (*domain.Document, error) {
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	return s.ports.Document.Upload(r.Context(), driving.UploadRequest{
		ID:       req.ID,
		Name:     req.Name,
		Content:  req.Content,
		MIMEType: req.MIMEType,
	})
}

func (s *Server) uploadMultipart(r *http.Request) (*domain.Document, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidInput)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	// The type is detected from the file name; browsers often send
	// application/octet-stream for anything they do not recognise.
	raw := &domain.RawDocument{URI: header.Filename, Content: content}
	return s.ports.Import.ImportRaw(r.Context(), raw, r.FormValue("id"))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := readQuery(w, r)
	if !ok {
		return
	}

	answer, err := s.ports.Query.Answer(r.Context(), req.Query, domain.QueryOptions{TopK: req.TopK})
	if err != nil {
		writeError(w, err)
		return
	}
	if answer.Cause != nil {
		logger.Warn("%s: %v", answer.Outcome, answer.Cause)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, askResponse{
		Text:    answer.Text,
		Answer:  answer.Answer,
		Sources: sources,
		Outcome: string(answer.Outcome),
		Results: toResultsJSON(answer.Results),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := readQuery(w, r)
	if !ok {
		return
	}

	results, err := s.ports.Query.Search(r.Context(), req.Query, domain.QueryOptions{TopK: req.TopK})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": toResultsJSON(results)})
}

// readQuery decodes a query body, writing the error response on failure.
func readQuery(w http.ResponseWriter, r *http.Request) (queryRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, fmt.Errorf("%w: query is required", domain.ErrInvalidInput))
		return req, false
	}
	if req.TopK < 0 {
		writeError(w, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidInput))
		return req, false
	}
	return req, true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
