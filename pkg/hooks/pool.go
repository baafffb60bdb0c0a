package hooks

import (
	"context"
	"fmt"
)

// defaultPoolSize bounds how many blocking hook bodies may run at once
// across all in-flight requests.
const defaultPoolSize = 8

// Pool dispatches blocking hook bodies onto a bounded set of workers so a
// slow synchronous observer cannot stall the caller indefinitely. Completion
// is still awaited before the next hook runs, preserving the pipeline's
// sequential-execution invariant.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool admitting at most size concurrent hook bodies.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = defaultPoolSize
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Run executes fn on the pool and waits for it to finish or ctx to be done.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("worker pool wait cancelled: %w", ctx.Err())
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-p.slots }()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The body keeps its slot until it returns; we only stop waiting.
		return fmt.Errorf("hook execution cancelled: %w", ctx.Err())
	}
}

//nolint:gochecknoglobals // Shared default pool mirrors the bounded-worker model
var defaultPool = NewPool(defaultPoolSize)

// Blocking wraps a synchronous hook so its body runs on the shared bounded
// pool. Use it when registering hooks that perform blocking I/O.
func Blocking(hook Hook) Hook {
	return func(ctx context.Context, rc *Context) error {
		return defaultPool.Run(ctx, func() error {
			return hook(ctx, rc)
		})
	}
}
