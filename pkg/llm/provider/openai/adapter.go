// Package openai provides the OpenAI adapter implementation using the official Go SDK.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"langops/pkg/llm"
	"langops/pkg/llm/llmerrors"
)

// Adapter wraps the official OpenAI client to implement llm.Adapter.
type Adapter struct {
	client openai.Client
	model  string
}

// New creates a raw OpenAI adapter; retry and hooks are applied at a higher level.
func New(apiKey, model string) *Adapter {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Adapter{
		client: client,
		model:  model,
	}
}

// flattenMessages folds the conversation into a single input string for the
// Responses API.
func flattenMessages(messages []llm.Message) string {
	var b strings.Builder
	for i := range messages {
		msg := &messages[i]
		switch msg.Role {
		case llm.RoleSystem:
			fmt.Fprintf(&b, "System: %s\n\n", msg.Content)
		case llm.RoleAssistant:
			fmt.Fprintf(&b, "Assistant: %s\n\n", msg.Content)
		default:
			b.WriteString(msg.Content)
		}
	}
	return b.String()
}

// Send implements llm.Adapter.
//
// Structured output is requested via a JSON-only instruction; the validator
// coerces the reply, matching the free-text contract of the adapter boundary.
func (a *Adapter) Send(ctx context.Context, req llm.Request) (llm.Envelope, error) {
	if err := llm.ValidateRequest(req); err != nil {
		return llm.Envelope{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeClient, err, "invalid request")
	}

	inputText := flattenMessages(req.Messages)
	if req.OutputSchema != nil {
		inputText += fmt.Sprintf("\n\nRespond with a single JSON object matching the %s schema. No prose.", req.OutputSchema.Name)
	}

	params := responses.ResponseNewParams{
		Model:           a.model,
		MaxOutputTokens: openai.Int(int64(req.MaxTokens)),
		Temperature:     openai.Float(float64(req.Temperature)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(inputText)},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return llm.Envelope{}, llmerrors.Classify(err)
	}
	if resp == nil {
		return llm.Envelope{}, llmerrors.NewError(llmerrors.ErrorTypeServer, "empty response from OpenAI Responses API")
	}

	content := resp.OutputText()

	return llm.Envelope{
		Content:   content,
		ModelName: a.model,
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// ModelName returns the model this adapter targets.
func (a *Adapter) ModelName() string {
	return a.model
}
