package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/logger"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-flash",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return p
}

func writeGeminiText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     7,
			"candidatesTokenCount": 11,
			"totalTokenCount":      18,
		},
	})
}

func TestGeminiProvider_FirstCandidateText(t *testing.T) {
	var path atomic.Value
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		writeGeminiText(w, "```json\n{\"ok\":true}\n```")
	})

	resp, err := p.Generate(context.Background(), UserPrompt("hello"))
	require.NoError(t, err)
	assert.Equal(t, "```json\n{\"ok\":true}\n```", resp.Text)
	assert.Equal(t, 7, resp.Usage.InputTokens)
	assert.Equal(t, 11, resp.Usage.OutputTokens)
	assert.Equal(t, "end", resp.StopReason)
	got, _ := path.Load().(string)
	assert.True(t, strings.Contains(got, "gemini-2.0-flash:generateContent"), "path %q", got)
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := p.Generate(context.Background(), UserPrompt("hello"))
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
}

func TestGeminiProvider_ErrorStatus(t *testing.T) {
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := p.Generate(context.Background(), UserPrompt("hello"))
	var transport *ErrTransport
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusBadRequest, transport.StatusCode)
	assert.False(t, transport.Retryable())
}

func TestGeminiProvider_ExecutorTimeoutAbortsRequest(t *testing.T) {
	var aborted atomic.Bool
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		// The server only notices a client disconnect once the body is consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
			aborted.Store(true)
		case <-time.After(5 * time.Second):
			writeGeminiText(w, `{}`)
		}
	})

	exec := NewExecutor(p, logger.Nop())
	_, err := exec.Execute(context.Background(), "slow", 100*time.Millisecond)

	var timeout *ErrTimeout
	require.True(t, errors.As(err, &timeout), "expected ErrTimeout, got %T (%v)", err, err)
	require.Eventually(t, aborted.Load, 2*time.Second, 10*time.Millisecond)
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"age":   map[string]any{"type": "integer"},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"scores": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []string{"name", "age"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if len(schema.Properties["grade"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["grade"].Enum))
	}
	if schema.Properties["scores"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
