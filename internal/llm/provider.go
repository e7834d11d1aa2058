// Package llm is the text-generation client layer used by the question
// generator. Providers share one request/response shape; decorators add
// retries and request logging.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a completion, optionally constrained to a JSON schema.
type Provider interface {
	// Generate sends req and returns the completion. When req.Schema is set
	// the returned Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for JSON output conforming to it. Providers use
	// their native structured output where they have one.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
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

// UserPrompt builds the common single-turn message list.
func UserPrompt(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema is a named JSON Schema. Name doubles as the tool or schema name
// sent to providers, e.g. "question-batch".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Stop reasons, normalized across providers.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is a completed generation.
type Response struct {
	// Content is the JSON document produced for a schema request, or the
	// raw text otherwise.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage is the token accounting of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Purpose labels, attached with WithPurpose and stored on every logged call.
const (
	PurposeTopics    = "topic-gen"
	PurposeQuestions = "question-gen"
	PurposeProbe     = "probe"
)
