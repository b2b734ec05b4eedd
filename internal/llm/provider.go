package llm

import (
	"context"
	"encoding/json"
)

// Provider is the reasoning-service abstraction. Every judgement the
// application delegates to a language model goes through Generate.
type Provider interface {
	// Generate sends a prompt to the model and returns its response.
	// When req.Schema is set the provider asks for JSON conforming to it
	// and Response.Content holds that JSON, already schema-checked by the
	// concrete adapters.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Assessments send a single user
	// message; the chatbot replays the whole history.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When nil,
	// Content is the raw text of the reply.
	Schema *Schema

	MaxTokens int

	// Temperature ranges 0.0 - 1.0; zero means provider default.
	Temperature float64
}

// Message is a single turn in the conversation.
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

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema; it doubles as the compiled-schema cache
	// key and as the OpenAI response-format name. Kebab-case.
	Name string

	Description string

	// Definition is the JSON Schema document as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
