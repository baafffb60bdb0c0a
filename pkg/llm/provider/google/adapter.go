// Package google provides the Google Gemini adapter implementation.
package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"langops/pkg/llm"
	"langops/pkg/llm/llmerrors"
	"langops/pkg/schema"
)

// Adapter wraps the Google GenAI client to implement llm.Adapter.
type Adapter struct {
	client *genai.Client
	apiKey string
	model  string
}

// New creates a raw Gemini adapter; retry and hooks are applied at a higher
// level. Client creation needs a context, so it is deferred to the first Send.
func New(apiKey, model string) *Adapter {
	return &Adapter{
		apiKey: apiKey,
		model:  model,
	}
}

// convertMessages converts normalized messages to Gemini Content, extracting
// system messages into the system instruction.
func convertMessages(messages []llm.Message) ([]*genai.Content, string, error) {
	var systemParts []string
	var contents []*genai.Content

	for i := range messages {
		msg := &messages[i]
		if msg.Role == llm.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}

		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model" // Gemini uses "model" instead of "assistant"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	if len(contents) == 0 {
		return nil, "", fmt.Errorf("must have at least one non-system message")
	}
	return contents, strings.Join(systemParts, "\n\n"), nil
}

// convertSchema maps a descriptor to Gemini's native response schema.
func convertSchema(desc *schema.Descriptor) (*genai.Schema, error) {
	properties := make(map[string]*genai.Schema, len(desc.Fields))
	var required []string

	for _, name := range desc.FieldNames() {
		field := desc.Fields[name]
		var prop genai.Schema
		switch field.Type {
		case schema.TypeString:
			prop.Type = genai.TypeString
			if len(field.Enum) > 0 {
				prop.Enum = field.Enum
			}
		case schema.TypeNumber:
			prop.Type = genai.TypeNumber
		case schema.TypeInteger:
			prop.Type = genai.TypeInteger
		case schema.TypeBoolean:
			prop.Type = genai.TypeBoolean
		default:
			return nil, fmt.Errorf("field %q: unsupported type %q", name, field.Type)
		}
		if field.Minimum != nil {
			prop.Minimum = field.Minimum
		}
		if field.Maximum != nil {
			prop.Maximum = field.Maximum
		}
		properties[name] = &prop
		if !field.Optional {
			required = append(required, name)
		}
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   required,
	}, nil
}

// Send implements llm.Adapter using Gemini's native structured output when a
// schema is requested.
func (a *Adapter) Send(ctx context.Context, req llm.Request) (llm.Envelope, error) {
	if err := llm.ValidateRequest(req); err != nil {
		return llm.Envelope{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeClient, err, "invalid request")
	}

	if a.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  a.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return llm.Envelope{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnreachable, err, "failed to create Gemini client")
		}
		a.client = client
	}

	contents, systemInstruction, err := convertMessages(req.Messages)
	if err != nil {
		return llm.Envelope{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeClient, err, "message conversion failed")
	}

	maxTokens := int32(req.MaxTokens) //nolint:gosec // MaxTokens validated at higher layer
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	structured := false
	if req.OutputSchema != nil {
		responseSchema, convErr := convertSchema(req.OutputSchema)
		if convErr != nil {
			return llm.Envelope{}, llmerrors.NewErrorWithCause(
				llmerrors.ErrorTypeStructuredOutputUnavailable, convErr,
				fmt.Sprintf("cannot express schema %s natively", req.OutputSchema.Name))
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = responseSchema
		structured = true
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return llm.Envelope{}, llmerrors.Classify(err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return llm.Envelope{}, llmerrors.NewError(llmerrors.ErrorTypeServer, "empty response from Gemini API")
	}

	envelope := llm.Envelope{
		Content:    result.Text(),
		ModelName:  a.model,
		Structured: structured,
	}
	if result.UsageMetadata != nil {
		envelope.Usage = llm.Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	return envelope, nil
}

// ModelName returns the model this adapter targets.
func (a *Adapter) ModelName() string {
	return a.model
}
