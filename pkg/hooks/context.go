// Package hooks lets independently-developed observers react to a request
// and response without the orchestrator knowing their identities. A hook
// receives the shared mutable request Context; hooks run strictly
// sequentially within a phase because they may mutate shared state.
package hooks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"langops/pkg/llm"
	"langops/pkg/schema"
)

// Context is the mutable per-request envelope threaded through the request
// lifecycle. It is exclusively owned by one in-flight request and never
// shared across concurrent requests.
//
//nolint:govet // fieldalignment: field order follows the request lifecycle
type Context struct {
	// Request side, populated before any hook runs.
	Messages      []llm.Message
	Prompt        string
	Temperature   float32
	OperationName string
	OutputSchema  *schema.Descriptor

	// Resolved from the profile; immutable after resolution.
	ProviderName string
	ModelName    string

	// Identity of the logical entity this request is about.
	ParentKey          int64
	ContentFingerprint string
	AnalyzedText       string
	Override           bool

	// TraceID correlates hook output across observers. Generated once per
	// request when the caller does not supply one.
	TraceID string

	// Started marks when the request entered the orchestrator, for
	// latency accounting in after-hooks.
	Started time.Time

	// Response side. RawResponse is written at most once, by the adapter
	// call; ParsedObject is derived deterministically from RawResponse and
	// OutputSchema by the validator, or left nil on a soft failure.
	RawResponse   *llm.Envelope
	ParsedObject  map[string]any
	ValidationErr error
}

// NewContext creates a request context with a fresh trace ID.
func NewContext(operationName string, messages []llm.Message) *Context {
	return &Context{
		OperationName: operationName,
		Messages:      messages,
		TraceID:       uuid.NewString(),
		Started:       time.Now(),
	}
}

// Hook observes one request. Before-hooks must not assume RawResponse is
// populated; after-hooks see RawResponse and ParsedObject. A returned error
// aborts the remaining hooks in the current phase.
type Hook func(ctx context.Context, rc *Context) error
