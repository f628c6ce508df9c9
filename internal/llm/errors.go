package llm

import (
	"fmt"
	"net/http"
	"time"
)

// ErrTimeout indicates the request did not complete before its deadline.
// The in-flight call was cancelled; the remote side may still finish.
type ErrTimeout struct {
	After time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("LLM request timed out after %s", e.After)
}

// ErrTransport indicates a non-success response or a network failure.
// StatusCode is 0 when no HTTP response was received. Body holds the error
// payload for logs and is deliberately left out of Error().
type ErrTransport struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrTransport) Error() string {
	if e.StatusCode == 0 {
		return "LLM provider unreachable"
	}
	return fmt.Sprintf("LLM request failed with status %d", e.StatusCode)
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// Retryable reports whether a caller-side retry is likely to help.
func (e *ErrTransport) Retryable() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// ErrInvalidResponse indicates a success response without a non-empty
// candidate list carrying extractable text.
type ErrInvalidResponse struct {
	Err error
}

func (e *ErrInvalidResponse) Error() string {
	return "invalid LLM response shape"
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrNotJSON indicates the normalized completion does not start with '{' or '['.
type ErrNotJSON struct {
	Text string
}

func (e *ErrNotJSON) Error() string {
	return "LLM response is not JSON"
}

// ErrParse indicates the normalized completion looked like JSON but failed
// to decode. Detail and Text are for diagnostics only.
type ErrParse struct {
	Detail string
	Text   string
	Err    error
}

func (e *ErrParse) Error() string {
	return "could not parse LLM response"
}

func (e *ErrParse) Unwrap() error { return e.Err }

// ErrSchema indicates decoded JSON that does not match the expected shape.
type ErrSchema struct {
	Schema string
	Err    error
}

func (e *ErrSchema) Error() string {
	return fmt.Sprintf("LLM response does not match %s", e.Schema)
}

func (e *ErrSchema) Unwrap() error { return e.Err }
