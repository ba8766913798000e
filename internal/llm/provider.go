// Package llm wraps the hosted model APIs behind a single Provider
// interface that returns schema-validated JSON.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a structured response from a model.
type Provider interface {
	// Generate sends the request and returns the model output. When
	// req.Schema is set, Content is JSON that already passed validation
	// against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the model the provider is configured for.
	ModelID() string
}

// Named is implemented by providers that can report which backend serves
// them. The request log falls back to ModelID when it is absent.
type Named interface {
	ProviderName() string
}

// Request is one generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the backend for structured output and
	// enables validation of the returned JSON.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who sent a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt is shorthand for a single-turn request body.
func UserPrompt(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name must be unique per definition; compiled schemas are cached by it.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the normalized reason generation ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is the model output for one Request.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Decode unmarshals Content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return &ErrInvalidResponse{Content: r.Content, Err: err}
	}
	return nil
}

// Usage is the token accounting for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// finish applies the checks every backend shares once raw content is in hand.
func finish(req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if stop == StopMaxTokens && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    content,
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}, nil
}
