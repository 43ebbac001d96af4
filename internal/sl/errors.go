package sl

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRetriesExhausted is wrapped into the error returned after the last failed attempt.
var ErrRetriesExhausted = errors.New("retries exhausted")

var errInvalidRequest = errors.New("invalid request")

// StatusError is returned for a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status is worth another attempt: 429 and 5xx.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// DecodeError wraps a body that could not be decoded into the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// isRetryable classifies the outcome of one attempt.
func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) || errors.Is(err, errInvalidRequest) {
		return false
	}
	// Transport failures and per-attempt timeouts.
	return true
}
