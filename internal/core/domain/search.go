package domain

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// QueryOptions configures a question or search.
type QueryOptions struct {
	// TopK is the maximum number of chunks to retrieve. Zero means DefaultTopK.
	TopK int
}

// EffectiveTopK returns TopK, falling back to DefaultTopK.
func (o QueryOptions) EffectiveTopK() int {
	if o.TopK <= 0 {
		return DefaultTopK
	}
	return o.TopK
}

// SearchResult represents a single retrieved chunk.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query.
	Score float64
}

// AnswerOutcome says how a question was resolved.
type AnswerOutcome string

// Answer outcomes.
const (
	// OutcomeAnswered means the model produced an answer from retrieved context.
	OutcomeAnswered AnswerOutcome = "answered"

	// OutcomeNoDocuments means nothing has been indexed yet.
	OutcomeNoDocuments AnswerOutcome = "no_documents"

	// OutcomeQueryFailed means the question could not be embedded.
	OutcomeQueryFailed AnswerOutcome = "query_failed"

	// OutcomeNoResults means retrieval returned nothing.
	OutcomeNoResults AnswerOutcome = "no_results"

	// OutcomeGenerationFailed means the model call failed.
	OutcomeGenerationFailed AnswerOutcome = "generation_failed"
)

// User-facing fallback messages.
const (
	MessageNoDocuments      = "Please upload some documents first so I can help answer your questions based on their content."
	MessageQueryFailed      = "I couldn't process your question. Please try again."
	MessageNoResults        = "I couldn't find relevant information in your documents to answer that question."
	MessageGenerationFailed = "I'm having trouble processing your question right now. Please try again."
)

// Answer is the response to a question. It is never persisted.
type Answer struct {
	// Text is the full response shown to the user:
	// the generated answer plus a Sources line, or a fallback message.
	Text string `json:"text"`

	// Answer is the generated text alone. Empty for fallbacks.
	Answer string `json:"answer,omitempty"`

	// Sources lists the unique document names cited, in rank order.
	Sources []string `json:"sources,omitempty"`

	// Results are the chunks the answer was built from.
	Results []SearchResult `json:"-"`

	// Outcome says which path produced Text.
	Outcome AnswerOutcome `json:"outcome"`

	// Cause is the underlying error for failed outcomes.
	Cause error `json:"-"`
}

// Fallback builds an Answer carrying one of the fixed messages.
func Fallback(outcome AnswerOutcome, cause error) *Answer {
	var text string
	switch outcome {
	case OutcomeNoDocuments:
		text = MessageNoDocuments
	case OutcomeQueryFailed:
		text = MessageQueryFailed
	case OutcomeNoResults:
		text = MessageNoResults
	case OutcomeGenerationFailed:
		text = MessageGenerationFailed
	}
	return &Answer{Text: text, Outcome: outcome, Cause: cause}
}
