package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: `{"b":2}`},
	)

	resp1, err := mock.Generate(context.Background(), UserPrompt("first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), UserPrompt("second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Text)
	}
	if mock.LastPrompt() != "second" {
		t.Fatalf("expected last prompt 'second', got %q", mock.LastPrompt())
	}
}

func TestMockProvider_EmptyQueueReturnsTransportError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})

	var transport *ErrTransport
	if !errors.As(err, &transport) {
		t.Fatalf("expected ErrTransport, got: %T", err)
	}
	if transport.StatusCode != 503 {
		t.Fatalf("expected status 503, got %d", transport.StatusCode)
	}
}

func TestMockProvider_HonoursCancelledContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{}`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no recorded calls, got %d", mock.CallCount())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeRoadmap)
	if p := PurposeFrom(ctx); p != "roadmap" {
		t.Fatalf("expected 'roadmap', got %q", p)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrTransport{}, "LLM provider unreachable"},
		{&ErrTransport{StatusCode: 500, Body: "secret payload"}, "LLM request failed with status 500"},
		{&ErrInvalidResponse{}, "invalid LLM response shape"},
		{&ErrNotJSON{Text: "hi"}, "LLM response is not JSON"},
		{&ErrParse{Detail: "bad", Text: "{"}, "could not parse LLM response"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestErrTransport_Retryable(t *testing.T) {
	assert.True(t, (&ErrTransport{}).Retryable())
	assert.True(t, (&ErrTransport{StatusCode: 429}).Retryable())
	assert.True(t, (&ErrTransport{StatusCode: 502}).Retryable())
	assert.False(t, (&ErrTransport{StatusCode: 400}).Retryable())
	assert.False(t, (&ErrTransport{StatusCode: 404}).Retryable())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PATHWISE_LLM_PROVIDER", "openai")
	t.Setenv("PATHWISE_OPENAI_API_KEY", "sk-env")
	t.Setenv("PATHWISE_GEMINI_BASE_URL", "http://localhost:9999")

	cfg := ConfigFromEnv()
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "http://localhost:9999", cfg.Gemini.BaseURL)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"

	p, err := NewProvider(context.Background(), cfg, nil, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
	_, isRetry := p.(*RetryProvider)
	assert.False(t, isRetry, "retry must be opt-in")

	cfg.Retry.MaxAttempts = 3
	p, err = NewProvider(context.Background(), cfg, nil, logger.Nop())
	require.NoError(t, err)
	_, isRetry = p.(*RetryProvider)
	assert.True(t, isRetry)
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil, logger.Nop())
	require.Error(t, err)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordedEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	rec := &recordedEvents{}
	mock := NewMockProvider(
		MockResponse{Text: `{"ok":true}`, Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrTransport{StatusCode: 500, Body: "boom"}},
	)
	p := WithLogging(mock, rec, logger.Nop())

	ctx := WithPurpose(context.Background(), PurposeLesson)
	req := UserPrompt("teach me")
	req.System = "tutor"

	_, err := p.Generate(ctx, req)
	require.NoError(t, err)
	_, err = p.Generate(ctx, req)
	require.Error(t, err)

	require.Len(t, rec.events, 2)

	ok := rec.events[0]
	assert.Equal(t, "lesson", ok.Purpose)
	assert.True(t, ok.Success)
	assert.Equal(t, 12, ok.InputTokens)
	assert.Equal(t, `{"ok":true}`, ok.ResponseBody)
	assert.True(t, strings.Contains(ok.RequestBody, "[system]\ntutor"))
	assert.True(t, strings.Contains(ok.RequestBody, "[user]\nteach me"))

	failed := rec.events[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "LLM request failed with status 500: boom", failed.ErrorMessage)
}

func TestLoggingProvider_RecorderFailureDoesNotFailRequest(t *testing.T) {
	rec := &recordedEvents{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Text: `{}`}), rec, logger.Nop())

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, resp.Text)
}

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("model ids pass through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"})
		require.NoError(t, err)
		assert.Equal(t, "anthropic/claude-3-haiku", p.ModelID())
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"})
		require.Error(t, err)
	})
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input    string
		models   map[string]string
		expected string
	}{
		{"gemini-flash", geminiModels, "gemini-2.0-flash"},
		{"gemini-pro", geminiModels, "gemini-2.5-pro"},
		{"gemini-2.0-flash", geminiModels, "gemini-2.0-flash"},
		{"claude-haiku", anthropicModels, "claude-haiku-4-5-20251001"},
		{"some/model", nil, "some/model"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, tt.models); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.0-flash")
	require.NotNil(t, c)
	assert.InDelta(t, 0.1+0.4, c.Cost(1_000_000, 1_000_000), 1e-9)
	assert.Nil(t, LookupCost("no-such-model"))
}
