package driven

import "context"

// LLMService completes one system and user exchange. OpenAI, Anthropic
// and Ollama each have an adapter.
type LLMService interface {
	Provider

	// Complete returns the reply text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	ModelName() string
}

// CompletionRequest is one system and user exchange.
type CompletionRequest struct {
	// SystemPrompt carries the instructions and the retrieved context.
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int

	// Temperature is always sent, so zero means deterministic rather
	// than provider default.
	Temperature float64
}
