package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure RetrievalOrchestrator implements the interface.
var _ driving.QueryService = (*RetrievalOrchestrator)(nil)

const (
	contextSeparator = "\n\n---\n\n"
	sourcesPrefix    = "\n\nSources: "
)

// RetrievalOrchestrator ties splitting, embedding, the vector index and
// generation together. It owns no state of its own; the index and store
// are shared with DocumentService.
type RetrievalOrchestrator struct {
	splitter  driven.TextSplitter
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	store     driven.DocumentStore
	llm       driven.LLMService
	prompts   driven.PromptStore
	retrieval domain.RetrievalSettings
}

// OrchestratorOption configures a RetrievalOrchestrator.
type OrchestratorOption func(*RetrievalOrchestrator)

// WithLLMService sets the generation backend. Without one, Answer reports
// generation_failed.
func WithLLMService(llm driven.LLMService) OrchestratorOption {
	return func(o *RetrievalOrchestrator) {
		o.llm = llm
	}
}

// WithPromptStore sets where the answer system prompt is loaded from.
func WithPromptStore(prompts driven.PromptStore) OrchestratorOption {
	return func(o *RetrievalOrchestrator) {
		o.prompts = prompts
	}
}

// WithRetrievalSettings overrides top-k, max tokens and temperature.
func WithRetrievalSettings(r domain.RetrievalSettings) OrchestratorOption {
	return func(o *RetrievalOrchestrator) {
		if r.TopK > 0 {
			o.retrieval.TopK = r.TopK
		}
		if r.MaxTokens > 0 {
			o.retrieval.MaxTokens = r.MaxTokens
		}
		o.retrieval.Temperature = r.Temperature
	}
}

// NewRetrievalOrchestrator creates an orchestrator.
// The embedder may be nil when no provider is configured; ingestion and
// questions then fail with domain.ErrEmbeddingUnavailable.
func NewRetrievalOrchestrator(
	splitter driven.TextSplitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	store driven.DocumentStore,
	opts ...OrchestratorOption,
) *RetrievalOrchestrator {
	o := &RetrievalOrchestrator{
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		store:     store,
		retrieval: domain.DefaultAppSettings().Retrieval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IngestDocument splits, embeds and indexes doc, then persists its chunks.
// Any failure returns *domain.IngestionError and leaves none of the
// document's chunks in the index. Re-ingesting an ID replaces the previous
// chunks in one step.
func (o *RetrievalOrchestrator) IngestDocument(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	logger.Section("Ingest")
	logger.Debug("Document: %s (%s)", doc.Name, doc.ID)
	start := time.Now()
	defer logger.Elapsed("ingest "+doc.ID, start)

	fail := func(stage string, err error) ([]domain.Chunk, error) {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		logger.Warn("Ingest %s failed at %s: %v", doc.ID, stage, err)
		return nil, &domain.IngestionError{DocumentID: doc.ID, Stage: stage, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := o.splitter.Split(doc.Content)
	if len(texts) == 0 {
		return fail(domain.StageSplit, domain.ErrEmptyDocument)
	}
	logger.Debug("Split into %d chunks", len(texts))

	if o.embedder == nil {
		return fail(domain.StageEmbed, domain.ErrEmbeddingUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectors, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fail(domain.StageEmbed, err)
	}
	if len(vectors) != len(texts) {
		return fail(domain.StageEmbed, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors)))
	}
	logger.Debug("Embedded %d chunks with %s", len(vectors), o.embedder.ModelName())

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:           domain.ChunkID(doc.ID, i),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Content:      text,
			Position:     i,
			Embedding:    vectors[i],
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.index.ReplaceDocument(ctx, doc.ID, chunks); err != nil {
		return fail(domain.StageIndex, err)
	}

	// Persist with a context that survives cancellation so the index and
	// store cannot disagree once the index has been updated.
	if err := o.store.SaveChunks(context.WithoutCancel(ctx), doc.ID, chunks); err != nil {
		o.index.RemoveByDocumentID(ctx, doc.ID)
		return fail(domain.StagePersist, err)
	}

	logger.Info("Indexed %s: %d chunks", doc.Name, len(chunks))
	return chunks, nil
}

// Answer embeds query, retrieves the top chunks and asks the LLM for an
// answer grounded in them. Provider failures become fallback answers with
// the cause attached; only invalid input and cancellation return an error.
func (o *RetrievalOrchestrator) Answer(
	ctx context.Context, query string, opts domain.QueryOptions,
) (*domain.Answer, error) {
	logger.Section("Answer")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if o.index.Len() == 0 {
		logger.Debug("Index is empty, skipping retrieval")
		return domain.Fallback(domain.OutcomeNoDocuments, nil), nil
	}

	results, err := o.retrieve(ctx, query, o.topK(opts))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var qe *domain.QueryEmbeddingError
		if errors.As(err, &qe) || errors.Is(err, domain.ErrDimensionMismatch) {
			logger.Warn("Query failed: %v", err)
			return domain.Fallback(domain.OutcomeQueryFailed, err), nil
		}
		return nil, err
	}
	if len(results) == 0 {
		return domain.Fallback(domain.OutcomeNoResults, nil), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := o.generate(ctx, query, results)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("Generation failed: %v", err)
		fb := domain.Fallback(domain.OutcomeGenerationFailed, &domain.GenerationError{Err: err})
		fb.Results = results
		return fb, nil
	}

	sources := sourceNames(results)
	return &domain.Answer{
		Text:    text + sourcesPrefix + strings.Join(sources, ", "),
		Answer:  text,
		Sources: sources,
		Results: results,
		Outcome: domain.OutcomeAnswered,
	}, nil
}

// Search returns the ranked chunks for query. Unlike Answer, failures are
// returned as errors.
func (o *RetrievalOrchestrator) Search(
	ctx context.Context, query string, opts domain.QueryOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if o.index.Len() == 0 {
		return []domain.SearchResult{}, nil
	}
	results, err := o.retrieve(ctx, query, o.topK(opts))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return results, nil
}

// Restore loads the chunks of every indexed document from the store into
// the index. Documents whose embeddings do not match the embedder's
// dimension, or each other, are marked failed. Returns the number of
// documents restored.
func (o *RetrievalOrchestrator) Restore(ctx context.Context) (int, error) {
	logger.Section("Restore")
	start := time.Now()
	defer logger.Elapsed("restore", start)

	docs, err := o.store.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	restored := 0
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return restored, err
		}
		doc := &docs[i]
		if doc.State != domain.StateIndexed {
			continue
		}

		chunks, err := o.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return restored, fmt.Errorf("load chunks for %s: %w", doc.ID, err)
		}
		if len(chunks) == 0 {
			continue
		}

		err = checkDimensions(chunks, o.expectedDimensions())
		if err == nil {
			err = o.index.ReplaceDocument(ctx, doc.ID, chunks)
		}
		if err != nil {
			if !errors.Is(err, domain.ErrDimensionMismatch) {
				return restored, fmt.Errorf("restore %s: %w", doc.ID, err)
			}
			logger.Warn("Skipping %s: %v", doc.Name, err)
			o.markFailed(ctx, doc, err)
			continue
		}
		restored++
	}

	logger.Debug("Restored %d documents, %d chunks", restored, o.index.Len())
	return restored, nil
}

// expectedDimensions is the length every restored embedding must have, or
// 0 when neither the index nor the embedder fixes one yet.
func (o *RetrievalOrchestrator) expectedDimensions() int {
	if d := o.index.Dimensions(); d > 0 {
		return d
	}
	if o.embedder != nil {
		return o.embedder.Dimensions()
	}
	return 0
}

func checkDimensions(chunks []domain.Chunk, want int) error {
	if want <= 0 {
		return nil
	}
	for _, c := range chunks {
		if len(c.Embedding) != want {
			return &domain.IndexInvariantError{Expected: want, Got: len(c.Embedding)}
		}
	}
	return nil
}

func (o *RetrievalOrchestrator) markFailed(ctx context.Context, doc *domain.Document, cause error) {
	if err := o.store.DeleteChunks(ctx, doc.ID); err != nil {
		logger.Warn("delete chunks for %s: %v", doc.ID, err)
	}
	doc.State = domain.StateFailed
	doc.ChunkCount = 0
	doc.Error = cause.Error()
	doc.UpdatedAt = time.Now()
	if err := o.store.SaveDocument(ctx, doc); err != nil {
		logger.Warn("save %s: %v", doc.ID, err)
	}
}

func (o *RetrievalOrchestrator) retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if o.embedder == nil {
		return nil, &domain.QueryEmbeddingError{Err: domain.ErrEmbeddingUnavailable}
	}
	vec, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &domain.QueryEmbeddingError{Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, err := o.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Retrieved %d chunks (k=%d)", len(results), k)
	return results, nil
}

func (o *RetrievalOrchestrator) generate(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	if o.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	parts := make([]string, len(results))
	for i := range results {
		parts[i] = results[i].Chunk.Content
	}

	req := driven.CompletionRequest{
		SystemPrompt: buildSystemPrompt(o.systemTemplate(), strings.Join(parts, contextSeparator)),
		UserPrompt:   query,
		MaxTokens:    o.retrieval.MaxTokens,
		Temperature:  o.retrieval.Temperature,
	}
	logger.Debug("Generating with %s (max_tokens=%d)", o.llm.ModelName(), req.MaxTokens)

	return o.llm.Complete(ctx, req)
}

func (o *RetrievalOrchestrator) systemTemplate() string {
	if o.prompts == nil {
		return driven.DefaultAnswerSystemPrompt
	}
	tmpl, err := o.prompts.Load(driven.PromptAnswerSystem)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			logger.Warn("load prompt: %v", err)
		}
		return driven.DefaultAnswerSystemPrompt
	}
	return tmpl
}

func (o *RetrievalOrchestrator) topK(opts domain.QueryOptions) int {
	if opts.TopK > 0 {
		return opts.TopK
	}
	if o.retrieval.TopK > 0 {
		return o.retrieval.TopK
	}
	return domain.DefaultTopK
}

// buildSystemPrompt fills the first %s placeholder with the retrieved
// context. Templates without one get the context appended.
func buildSystemPrompt(tmpl, retrieved string) string {
	if i := strings.Index(tmpl, "%s"); i >= 0 {
		return tmpl[:i] + retrieved + tmpl[i+2:]
	}
	return strings.TrimRight(tmpl, "\n") + "\n\n" + retrieved
}

// sourceNames returns the unique document names in first-seen order.
func sourceNames(results []domain.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	names := make([]string, 0, len(results))
	for i := range results {
		name := results[i].Chunk.DocumentName
		if name == "" {
			name = results[i].Chunk.DocumentID
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
