package llm

import (
	"context"
)

// Provider is the core abstraction for LLM interaction.
// A provider sends one request and returns the raw text completion; JSON
// extraction and decoding happen in the Executor.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the raw completion.
	// Implementations must honour ctx cancellation and map transport
	// failures to *ErrTransport and malformed payloads to *ErrInvalidResponse.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the optional system prompt.
	System string

	// Messages is the conversation history. Pathwise always sends a
	// single user turn.
	Messages []Message

	// Schema, when set, asks the provider to use its native structured
	// output mechanism. Providers that cannot express the schema ignore it
	// and rely on the prompt's format instructions.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds a single-turn request carrying prompt as the user message.
func UserPrompt(prompt string) Request {
	return Request{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "week-plans".
	Name string

	// Description is sent to providers that support schema descriptions.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// objectRoot reports whether the schema's root is a JSON object. OpenAI and
// Anthropic structured output only accept object roots.
func (s *Schema) objectRoot() bool {
	if s == nil {
		return false
	}
	t, _ := s.Definition["type"].(string)
	return t == "object"
}

// Response holds the LLM's output.
type Response struct {
	// Text is the raw text of the first candidate.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
