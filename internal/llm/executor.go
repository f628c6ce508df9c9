package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/pathwise/internal/logger"
)

// Decoded is the result of a successful Execute call.
type Decoded struct {
	// Raw is the normalized JSON text.
	Raw json.RawMessage

	// Value is Raw decoded into generic Go values, used for schema checks.
	Value any

	// Response is the provider response the text was taken from.
	Response *Response
}

// Executor issues one bounded generation request and turns the completion
// into decoded JSON. It never retries; retry policy belongs to the caller.
type Executor struct {
	provider Provider
	log      *logger.Logger
}

// NewExecutor creates an Executor over the given provider.
func NewExecutor(provider Provider, log *logger.Logger) *Executor {
	return &Executor{provider: provider, log: log.With("component", "llm.Executor")}
}

// Execute sends prompt as a single user turn and waits at most timeout.
func (e *Executor) Execute(ctx context.Context, prompt string, timeout time.Duration) (*Decoded, error) {
	return e.ExecuteRequest(ctx, UserPrompt(prompt), timeout)
}

type generateResult struct {
	resp *Response
	err  error
}

// ExecuteRequest is Execute with full control over the request.
//
// The provider call races a timer; when the timer wins the call's context
// is cancelled and *ErrTimeout is returned without waiting for the provider.
func (e *Executor) ExecuteRequest(ctx context.Context, req Request, timeout time.Duration) (*Decoded, error) {
	purpose := PurposeFrom(ctx)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan generateResult, 1)
	go func() {
		resp, err := e.provider.Generate(callCtx, req)
		done <- generateResult{resp: resp, err: err}
	}()

	var res generateResult
	select {
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.Warn("llm request timed out", "purpose", purpose, "timeout", timeout.String())
		return nil, &ErrTimeout{After: timeout}
	case res = <-done:
	}

	if res.err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			e.log.Warn("llm request timed out", "purpose", purpose, "timeout", timeout.String())
			return nil, &ErrTimeout{After: timeout}
		}
		err := classify(res.err)
		e.logFailure(purpose, err)
		return nil, err
	}

	if res.resp == nil || res.resp.Text == "" {
		err := &ErrInvalidResponse{Err: errors.New("no candidate text in response")}
		e.logFailure(purpose, err)
		return nil, err
	}

	normalized := Normalize(res.resp.Text)
	if !looksLikeJSON(normalized) {
		err := &ErrNotJSON{Text: normalized}
		e.logFailure(purpose, err)
		return nil, err
	}

	var value any
	if err := json.Unmarshal([]byte(normalized), &value); err != nil {
		perr := &ErrParse{Detail: err.Error(), Text: normalized, Err: err}
		e.logFailure(purpose, perr)
		return nil, perr
	}

	return &Decoded{
		Raw:      json.RawMessage(normalized),
		Value:    value,
		Response: res.resp,
	}, nil
}

// classify maps provider errors onto the executor's taxonomy. Errors that
// are already typed pass through; anything else is a transport failure.
func classify(err error) error {
	var transport *ErrTransport
	if errors.As(err, &transport) {
		return transport
	}
	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		return invalid
	}
	return &ErrTransport{Body: err.Error(), Err: err}
}

func (e *Executor) logFailure(purpose string, err error) {
	kv := []any{"purpose", purpose, "error", err.Error()}

	var transport *ErrTransport
	var notJSON *ErrNotJSON
	var parse *ErrParse
	var invalid *ErrInvalidResponse
	switch {
	case errors.As(err, &transport):
		kv = append(kv, "status", transport.StatusCode, "body", transport.Body)
	case errors.As(err, &notJSON):
		kv = append(kv, "normalized", notJSON.Text)
	case errors.As(err, &parse):
		kv = append(kv, "detail", parse.Detail, "normalized", parse.Text)
	case errors.As(err, &invalid) && invalid.Err != nil:
		kv = append(kv, "detail", invalid.Err.Error())
	}
	e.log.Warn("llm request failed", kv...)
}
