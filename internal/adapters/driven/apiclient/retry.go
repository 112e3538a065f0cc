package apiclient

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/custodia-labs/docqa/internal/logger"
)

// Policy controls retries.
type Policy struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries int

	// Backoff is the wait between attempts.
	Backoff time.Duration
}

// DefaultPolicy retries once after half a second.
var DefaultPolicy = Policy{MaxRetries: 1, Backoff: 500 * time.Millisecond}

// Retry calls fn until it succeeds, the error is not retryable, the policy is
// exhausted, or ctx is done. The limiter, if any, is consulted before every attempt.
func Retry(ctx context.Context, policy Policy, limiter *Limiter, retryable func(error) bool, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || attempt >= policy.MaxRetries || !retryable(err) {
			return err
		}

		logger.Debug("Retrying after attempt %d failed: %v", attempt+1, err)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(policy.Backoff):
		}
	}
}

// IsRetryable reports whether err is a transport failure or a 5xx response.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return IsTransportError(err)
}

// IsTransportError reports whether err came from the network rather than
// from the server's response. Caller cancellation does not count.
func IsTransportError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
