// Package llm provides middleware chaining for adapters.
package llm

import "context"

// Middleware represents a function that wraps an Adapter with additional behavior.
// Middleware functions are composed using Chain() to create a processing pipeline.
type Middleware func(next Adapter) Adapter

// adapterFunc lets plain functions implement the Adapter interface.
type adapterFunc struct {
	send      func(context.Context, Request) (Envelope, error)
	modelName func() string
}

func (f adapterFunc) Send(ctx context.Context, req Request) (Envelope, error) {
	return f.send(ctx, req)
}

func (f adapterFunc) ModelName() string {
	return f.modelName()
}

// WrapAdapter creates an Adapter from the provided function implementations.
// This is a helper for middleware implementations that need to wrap behavior.
func WrapAdapter(
	send func(context.Context, Request) (Envelope, error),
	modelName func() string,
) Adapter {
	return adapterFunc{send: send, modelName: modelName}
}

// Chain composes multiple middlewares around a base Adapter.
// Middlewares are applied in order, with earlier middlewares being outermost:
//
//	Chain(adapter, mw1, mw2) => mw1 -> mw2 -> adapter
func Chain(base Adapter, middlewares ...Middleware) Adapter {
	adapter := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		adapter = middlewares[i](adapter)
	}
	return adapter
}
