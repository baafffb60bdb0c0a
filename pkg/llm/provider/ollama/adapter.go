// Package ollama provides the adapter for local models served by Ollama.
package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"langops/pkg/llm"
	"langops/pkg/llm/llmerrors"
)

// Adapter wraps the Ollama API client to implement llm.Adapter.
type Adapter struct {
	client *api.Client
	model  string
}

// New creates a raw Ollama adapter. hostURL is the Ollama server URL
// (e.g. "http://localhost:11434"); an unparseable URL falls back to the default.
func New(hostURL, model string) *Adapter {
	parsedURL, err := url.Parse(hostURL)
	if err != nil || hostURL == "" {
		parsedURL, _ = url.Parse("http://localhost:11434")
	}

	return &Adapter{
		client: api.NewClient(parsedURL, http.DefaultClient),
		model:  model,
	}
}

// Send implements llm.Adapter. Ollama supports JSON-schema constrained output
// natively through the request's format field.
func (a *Adapter) Send(ctx context.Context, req llm.Request) (llm.Envelope, error) {
	if err := llm.ValidateRequest(req); err != nil {
		return llm.Envelope{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeClient, err, "invalid request")
	}

	messages := make([]api.Message, 0, len(req.Messages))
	for i := range req.Messages {
		messages = append(messages, api.Message{
			Role:    string(req.Messages[i].Role),
			Content: req.Messages[i].Content,
		})
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    a.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	structured := false
	if req.OutputSchema != nil {
		format, err := json.Marshal(req.OutputSchema.JSONSchema())
		if err != nil {
			return llm.Envelope{}, llmerrors.NewErrorWithCause(
				llmerrors.ErrorTypeStructuredOutputUnavailable, err,
				"cannot express schema as Ollama format")
		}
		chatReq.Format = format
		structured = true
	}

	var response api.ChatResponse
	err := a.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return llm.Envelope{}, llmerrors.Classify(err)
	}

	return llm.Envelope{
		Content:    response.Message.Content,
		ModelName:  a.model,
		StopReason: response.DoneReason,
		Structured: structured,
		Usage: llm.Usage{
			InputTokens:  response.PromptEvalCount,
			OutputTokens: response.EvalCount,
		},
	}, nil
}

// ModelName returns the model this adapter targets.
func (a *Adapter) ModelName() string {
	return a.model
}
