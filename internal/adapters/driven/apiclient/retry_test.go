package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy, nil, IsRetryable, func(context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_NotRetryable(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Retry(context.Background(), fastPolicy, nil, IsRetryable, func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetry_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, Policy{MaxRetries: 3, Backoff: time.Hour}, nil, func(error) bool { return true }, func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_HonoursMaxRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), Policy{MaxRetries: 2, Backoff: time.Millisecond}, nil,
		func(error) bool { return true },
		func(context.Context) error {
			calls++
			return errors.New("again")
		})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"500", &StatusError{StatusCode: 500}, true},
		{"502 wrapped", fmt.Errorf("embed: %w", &StatusError{StatusCode: 502}), true},
		{"400", &StatusError{StatusCode: 400}, false},
		{"429", &StatusError{StatusCode: 429}, false},
		{"transport", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")}, true},
		{"cancelled", &url.Error{Op: "Post", URL: "http://x", Err: context.Canceled}, false},
		{"plain", errors.New("bad json"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
