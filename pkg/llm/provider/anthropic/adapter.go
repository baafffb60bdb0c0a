// Package anthropic provides the Anthropic Claude adapter implementation.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"langops/pkg/llm"
	"langops/pkg/llm/llmerrors"
)

// Adapter wraps the Anthropic API client to implement llm.Adapter.
type Adapter struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a raw Claude adapter; retry and hooks are applied at a higher level.
func New(apiKey, model string) *Adapter {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Adapter{
		client: client,
		model:  anthropic.Model(model),
	}
}

// prepareMessages extracts system messages into the top-level system prompt
// and merges consecutive user messages so the sequence alternates the way the
// Anthropic API requires.
func prepareMessages(messages []llm.Message) (systemPrompt string, alternating []llm.Message, err error) {
	if len(messages) == 0 {
		return "", nil, fmt.Errorf("message list cannot be empty")
	}

	var systemParts []string
	var rest []llm.Message
	for i := range messages {
		if messages[i].Role == llm.RoleSystem {
			systemParts = append(systemParts, messages[i].Content)
		} else {
			rest = append(rest, messages[i])
		}
	}
	systemPrompt = strings.Join(systemParts, "\n\n")

	if len(rest) == 0 {
		return "", nil, fmt.Errorf("must have at least one non-system message")
	}

	// Merge consecutive user messages; assistant messages pass through.
	var merged []llm.Message
	var userParts []string
	flush := func() {
		if len(userParts) > 0 {
			merged = append(merged, llm.NewUserMessage(strings.Join(userParts, "\n\n")))
			userParts = nil
		}
	}
	for i := range rest {
		if rest[i].Role == llm.RoleAssistant {
			flush()
			merged = append(merged, rest[i])
		} else {
			userParts = append(userParts, rest[i].Content)
		}
	}
	flush()

	if merged[0].Role != llm.RoleUser {
		return "", nil, fmt.Errorf("first message must be user role, got: %s", merged[0].Role)
	}
	if merged[len(merged)-1].Role != llm.RoleUser {
		return "", nil, fmt.Errorf("last message must be user role, got: %s", merged[len(merged)-1].Role)
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Role == merged[i-1].Role {
			return "", nil, fmt.Errorf("alternation violation at index %d: consecutive %s messages", i, merged[i].Role)
		}
	}

	return systemPrompt, merged, nil
}

// Send implements llm.Adapter.
//
// The Messages API has no schema-constrained output mode, so when a schema is
// requested the adapter appends a JSON-only instruction and returns free text
// for the validator to coerce.
func (a *Adapter) Send(ctx context.Context, req llm.Request) (llm.Envelope, error) {
	if err := llm.ValidateRequest(req); err != nil {
		return llm.Envelope{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeClient, err, "invalid request")
	}

	systemPrompt, alternating, err := prepareMessages(req.Messages)
	if err != nil {
		return llm.Envelope{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeClient, err, "message preparation failed")
	}

	messages := make([]anthropic.MessageParam, 0, len(alternating))
	for i := range alternating {
		msg := &alternating[i]
		messages = append(messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRole(msg.Role),
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Content)},
		})
	}

	params := anthropic.MessageNewParams{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
	}

	if req.OutputSchema != nil {
		instruction := fmt.Sprintf("Respond with a single JSON object matching the %s schema. No prose.", req.OutputSchema.Name)
		if systemPrompt != "" {
			systemPrompt += "\n\n" + instruction
		} else {
			systemPrompt = instruction
		}
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: systemPrompt,
			Type: "text",
		}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Envelope{}, llmerrors.Classify(err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return llm.Envelope{}, llmerrors.NewError(llmerrors.ErrorTypeServer, "received empty response from Anthropic API")
	}

	var text strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	return llm.Envelope{
		Content:    text.String(),
		ModelName:  string(resp.Model),
		StopReason: string(resp.StopReason),
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// ModelName returns the model this adapter targets.
func (a *Adapter) ModelName() string {
	return string(a.model)
}
