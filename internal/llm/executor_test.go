package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/logger"
)

// blockingProvider never answers on its own; it waits for cancellation.
type blockingProvider struct {
	cancelled atomic.Bool
}

func (b *blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	b.cancelled.Store(true)
	return nil, ctx.Err()
}

func (b *blockingProvider) ModelID() string { return "blocking" }

func newTestExecutor(p Provider) *Executor {
	return NewExecutor(p, logger.Nop())
}

func TestExecute_DecodesFencedJSON(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "```json\n[{\"question\":\"Why?\"}]\n```"})
	exec := newTestExecutor(mock)

	got, err := exec.Execute(context.Background(), "ask me", time.Second)
	require.NoError(t, err)

	assert.JSONEq(t, `[{"question":"Why?"}]`, string(got.Raw))
	items, ok := got.Value.([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
	assert.Equal(t, "ask me", mock.LastPrompt())
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		resp  MockResponse
		check func(t *testing.T, err error)
	}{
		{
			name: "prose only",
			resp: MockResponse{Text: "I cannot do that."},
			check: func(t *testing.T, err error) {
				var notJSON *ErrNotJSON
				require.ErrorAs(t, err, &notJSON)
				assert.Equal(t, "I cannot do that.", notJSON.Text)
			},
		},
		{
			name: "broken json",
			resp: MockResponse{Text: `{"a": 1,,}`},
			check: func(t *testing.T, err error) {
				var perr *ErrParse
				require.ErrorAs(t, err, &perr)
				assert.NotEmpty(t, perr.Detail)
				assert.Equal(t, `{"a": 1,,}`, perr.Text)
			},
		},
		{
			name: "empty text",
			resp: MockResponse{Text: ""},
			check: func(t *testing.T, err error) {
				var invalid *ErrInvalidResponse
				require.ErrorAs(t, err, &invalid)
			},
		},
		{
			name: "http status passes through",
			resp: MockResponse{Err: &ErrTransport{StatusCode: 401, Body: "bad key"}},
			check: func(t *testing.T, err error) {
				var transport *ErrTransport
				require.ErrorAs(t, err, &transport)
				assert.Equal(t, 401, transport.StatusCode)
				assert.Equal(t, "bad key", transport.Body)
			},
		},
		{
			name: "untyped error becomes transport",
			resp: MockResponse{Err: errors.New("connection reset")},
			check: func(t *testing.T, err error) {
				var transport *ErrTransport
				require.ErrorAs(t, err, &transport)
				assert.Equal(t, 0, transport.StatusCode)
				assert.Equal(t, "LLM provider unreachable", transport.Error())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := newTestExecutor(NewMockProvider(tt.resp))
			got, err := exec.Execute(context.Background(), "p", time.Second)
			require.Error(t, err)
			assert.Nil(t, got)
			tt.check(t, err)
		})
	}
}

func TestExecute_TimeoutCancelsInFlightCall(t *testing.T) {
	slow := &blockingProvider{}
	exec := newTestExecutor(slow)

	start := time.Now()
	_, err := exec.Execute(context.Background(), "p", 50*time.Millisecond)
	elapsed := time.Since(start)

	var timeout *ErrTimeout
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 50*time.Millisecond, timeout.After)
	assert.Less(t, elapsed, time.Second)

	require.Eventually(t, slow.cancelled.Load, time.Second, 5*time.Millisecond)
}

func TestExecute_ParentCancellation(t *testing.T) {
	slow := &blockingProvider{}
	exec := newTestExecutor(slow)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := exec.Execute(ctx, "p", 10*time.Second)
	require.ErrorIs(t, err, context.Canceled)

	var timeout *ErrTimeout
	assert.False(t, errors.As(err, &timeout))
}

func TestExecute_NeverRetries(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrTransport{StatusCode: 503}},
		MockResponse{Text: `{"ok":true}`},
	)
	exec := newTestExecutor(mock)

	_, err := exec.Execute(context.Background(), "p", time.Second)
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestExecuteRequest_PassesSchemaAndSystem(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{"name":"x","age":1}`})
	exec := newTestExecutor(mock)

	req := UserPrompt("go")
	req.System = "be terse"
	req.Schema = testSchema()

	got, err := exec.ExecuteRequest(context.Background(), req, time.Second)
	require.NoError(t, err)
	require.NoError(t, Validate(req.Schema, got.Value))

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "be terse", mock.Calls[0].System)
	assert.Equal(t, "test-object", mock.Calls[0].Schema.Name)
}
