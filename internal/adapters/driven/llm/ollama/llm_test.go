package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.NoError(t, svc.Close())
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req["model"])
		assert.Equal(t, false, req["stream"])

		opts := req["options"].(map[string]any)
		temp, ok := opts["temperature"]
		assert.True(t, ok)
		assert.Equal(t, float64(0), temp)
		assert.Equal(t, float64(200), opts["num_predict"])

		msgs := req["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: message{Role: "assistant", Content: "\nAnswer\n"},
			Done:    true,
		})
	}))
	defer server.Close()

	svc := NewLLMService(Config{BaseURL: server.URL + "/"})
	got, err := svc.Complete(context.Background(), driven.CompletionRequest{
		SystemPrompt: "context",
		UserPrompt:   "question",
		MaxTokens:    200,
	})

	require.NoError(t, err)
	assert.Equal(t, "Answer", got)
}

func TestComplete_BadReplies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"model 'llama3.2' not found"}`, "ollama: model 'llama3.2' not found"},
		{"not done", `{"message":{"role":"assistant","content":"partial"},"done":false}`, "ollama: incomplete response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewLLMService(Config{BaseURL: server.URL})
			_, err := svc.Complete(context.Background(), driven.CompletionRequest{UserPrompt: "q"})

			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestComplete_ServerErrorRetriedOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewLLMService(Config{
		BaseURL: server.URL,
		Policy:  &apiclient.Policy{MaxRetries: 1, Backoff: time.Millisecond},
	})
	_, err := svc.Complete(context.Background(), driven.CompletionRequest{UserPrompt: "q"})

	var statusErr *apiclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	svc := NewLLMService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	svc := NewLLMService(Config{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 100 * time.Millisecond,
		Policy:  &apiclient.Policy{},
	})
	assert.Error(t, svc.Ping(context.Background()))
}
