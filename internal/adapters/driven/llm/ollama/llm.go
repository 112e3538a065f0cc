// Package ollama answers prompts with a local Ollama server's chat API.
package ollama

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"

	// DefaultTimeout allows for a cold model load on the first request.
	DefaultTimeout = 120 * time.Second
)

// Config zero values select the defaults above. A nil Limiter means no
// rate limit and a nil Policy keeps apiclient.DefaultPolicy.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Limiter *apiclient.Limiter
	Policy  *apiclient.Policy
}

// LLMService generates answers through a local Ollama server.
type LLMService struct {
	client  *apiclient.Client
	baseURL string
	chat    string
	tags    string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Temperature is never omitted so that 0 is sent as 0.
type generation struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string     `json:"model"`
	Messages []message  `json:"messages"`
	Stream   bool       `json:"stream"`
	Options  generation `json:"options"`
}

type chatResponse struct {
	Message    message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// NewLLMService builds the adapter. Every Config field has a default.
func NewLLMService(cfg Config) *LLMService {
	base := strings.TrimSuffix(cmp.Or(cfg.BaseURL, DefaultBaseURL), "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []apiclient.Option{apiclient.WithTimeout(timeout), apiclient.WithLimiter(cfg.Limiter)}
	if cfg.Policy != nil {
		opts = append(opts, apiclient.WithPolicy(*cfg.Policy))
	}

	return &LLMService{
		client:  apiclient.New("ollama", opts...),
		baseURL: base,
		chat:    base + "/api/chat",
		tags:    base + "/api/tags",
		model:   cmp.Or(cfg.Model, DefaultModel),
	}
}

// Complete makes one non-streaming /api/chat call with a system and a
// user message.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	body := chatRequest{
		Model: s.model,
		Messages: []message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Options: generation{NumPredict: req.MaxTokens, Temperature: req.Temperature},
	}

	var resp chatResponse
	if err := s.client.DoJSON(ctx, http.MethodPost, s.chat, body, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: %s", resp.Error)
	}
	if !resp.Done {
		return "", errors.New("ollama: incomplete response")
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// ModelName returns the model tag.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists installed models, which checks reachability without loading
// one.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.DoJSON(ctx, http.MethodGet, s.tags, nil, nil); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources.
func (s *LLMService) Close() error {
	return nil
}
