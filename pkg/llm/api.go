// Package llm provides the provider-adapter abstraction: normalized messages
// in, a normalized response envelope out, one implementation per provider.
package llm

import (
	"context"
	"fmt"

	"langops/pkg/schema"
)

// Role represents the role of a message in a conversation.
type Role string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem Role = "system"
	// RoleUser indicates a message from the human user.
	RoleUser Role = "user"
	// RoleAssistant indicates a message from the model.
	RoleAssistant Role = "assistant"
)

const (
	// DefaultMaxTokens caps the response size when the caller does not say otherwise.
	DefaultMaxTokens = 1024

	// TemperatureDeterministic is used for classification-style operations where
	// reproducibility matters more than variety.
	TemperatureDeterministic = 0.0
)

// Message represents a single entry in a completion request.
type Message struct {
	Content string
	Role    Role
}

// Usage reports token consumption for one provider call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Request represents a normalized completion request handed to an adapter.
//
//nolint:govet // fieldalignment: value semantics preferred over pointer indirection
type Request struct {
	Messages     []Message
	OutputSchema *schema.Descriptor // nil when free text is acceptable
	MaxTokens    int
	Temperature  float32
}

// Envelope is the provider's normalized response.
// Content holds the textual payload; when the adapter obtained provider-native
// structured output, Content is already the canonical JSON document.
type Envelope struct {
	Content    string
	ModelName  string
	StopReason string
	Usage      Usage
	// Structured is true when Content came from a provider-native structured
	// output path and already conforms to the requested schema.
	Structured bool
}

// Adapter converts a normalized message list into one provider's call
// convention. Implementations perform no side effects beyond the outbound
// network call; retries, hooks, and validation happen in outer layers.
type Adapter interface {
	// Send performs one provider call. Messages must be non-empty.
	Send(ctx context.Context, req Request) (Envelope, error)

	// ModelName returns the model this adapter targets.
	ModelName() string
}

// NewRequest creates a request with default limits applied.
func NewRequest(messages []Message) Request {
	return Request{
		Messages:    messages,
		MaxTokens:   DefaultMaxTokens,
		Temperature: TemperatureDeterministic,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ValidateRequest checks the invariants every adapter relies on.
func ValidateRequest(req Request) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("message list cannot be empty")
	}
	if req.Temperature < 0.0 || req.Temperature > 1.0 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0, got %v", req.Temperature)
	}
	if req.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", req.MaxTokens)
	}
	for i := range req.Messages {
		switch req.Messages[i].Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("invalid role %q at index %d", req.Messages[i].Role, i)
		}
	}
	return nil
}
