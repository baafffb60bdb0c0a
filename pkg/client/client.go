// Package client is the orchestrator that drives a single LLM request
// through its full lifecycle: profile resolution, before-hooks, the
// provider call, output validation, and after-hooks.
package client

import (
	"context"
	"fmt"

	"langops/pkg/hooks"
	"langops/pkg/llm"
	"langops/pkg/logx"
	"langops/pkg/profile"
	"langops/pkg/schema"
)

// ProfileResolver resolves profile names into bound profiles.
// *profile.Resolver is the production implementation.
type ProfileResolver interface {
	Resolve(name string) (*profile.Profile, error)
}

// Orchestrator coordinates one request at a time through a resolved profile.
// It is safe for concurrent use; each request owns its hooks.Context.
type Orchestrator struct {
	resolver ProfileResolver
	pipeline *hooks.Pipeline
	logger   *logx.Logger
}

// New creates an orchestrator over a profile resolver.
func New(resolver ProfileResolver) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		pipeline: hooks.NewPipeline(),
		logger:   logx.NewLogger("client"),
	}
}

// Call runs one request through the named profile. The request context rc is
// mutated in place and returned for convenience.
//
// Failure semantics: resolution errors, before-hook errors, transport errors
// and after-hook errors are hard failures and surface as the returned error.
// A response that arrives but fails validation is a soft failure: Call
// returns nil, rc.ParsedObject stays nil and rc.ValidationErr records why.
func (o *Orchestrator) Call(ctx context.Context, profileName string, rc *hooks.Context) (*hooks.Context, error) {
	prof, err := o.resolver.Resolve(profileName)
	if err != nil {
		return rc, err
	}

	rc.ProviderName = prof.Provider
	rc.ModelName = prof.Model
	if rc.Temperature == 0 {
		rc.Temperature = prof.Temperature
	}
	if rc.Prompt != "" {
		rc.Messages = append(rc.Messages, llm.NewUserMessage(rc.Prompt))
		rc.Prompt = ""
	}

	if err := o.pipeline.Run(ctx, prof.BeforeHooks, rc); err != nil {
		return rc, fmt.Errorf("before hooks: %w", err)
	}

	req := llm.Request{
		Messages:     rc.Messages,
		OutputSchema: rc.OutputSchema,
		MaxTokens:    prof.MaxTokens,
		Temperature:  rc.Temperature,
	}

	envelope, err := prof.Adapter.Send(ctx, req)
	if err != nil {
		o.logger.Error("send failed op=%s profile=%s trace=%s: %v",
			rc.OperationName, profileName, rc.TraceID, err)
		return rc, err
	}

	// RawResponse is written exactly once per request, here.
	rc.RawResponse = &envelope

	o.validate(rc)

	if err := o.pipeline.Run(ctx, prof.AfterHooks, rc); err != nil {
		return rc, fmt.Errorf("after hooks: %w", err)
	}

	return rc, nil
}

// validate runs the strict/repair cascade against the response content.
// It mutates rc only: validation never fails the request.
func (o *Orchestrator) validate(rc *hooks.Context) {
	raw := rc.RawResponse.Content

	if rc.OutputSchema == nil {
		if canonical, ok := schema.Normalize(raw); ok {
			rc.RawResponse.Content = canonical
		}
		return
	}

	parsed, canonical, err := rc.OutputSchema.Validate(raw)
	if err == nil {
		rc.ParsedObject = parsed
		rc.RawResponse.Content = canonical
		return
	}
	strictErr := err

	parsed, canonical, err = rc.OutputSchema.Repair(raw)
	if err == nil {
		o.logger.Debug("repaired output op=%s trace=%s after strict failure: %v",
			rc.OperationName, rc.TraceID, strictErr)
		rc.ParsedObject = parsed
		rc.RawResponse.Content = canonical
		return
	}

	// Soft failure: the raw content is preserved untouched for the caller
	// to inspect, and downstream hooks see ParsedObject == nil.
	rc.ValidationErr = fmt.Errorf("strict validation failed (%v); repair failed (%v)", strictErr, err)
	o.logger.Warn("validation failed op=%s trace=%s: %v", rc.OperationName, rc.TraceID, rc.ValidationErr)
}
