package hooks

import (
	"context"
	"fmt"

	"langops/pkg/logx"
)

// Pipeline runs an ordered list of hooks over a shared request context.
// Execution is strictly sequential in declared order; the first failure
// aborts the remaining hooks and propagates.
type Pipeline struct {
	logger *logx.Logger
}

// NewPipeline creates a hook pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{logger: logx.NewLogger("hooks")}
}

// Run executes hooks in order against rc. The returned error identifies the
// failing hook by position so callers can tell which observer broke the chain.
func (p *Pipeline) Run(ctx context.Context, hooks []Hook, rc *Context) error {
	for i, hook := range hooks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("hook pipeline cancelled before hook %d: %w", i, err)
		}
		if err := hook(ctx, rc); err != nil {
			p.logger.Error("hook %d failed for operation %s (trace %s): %v",
				i, rc.OperationName, rc.TraceID, err)
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
		p.logger.Debug("hook %d completed for operation %s", i, rc.OperationName)
	}
	return nil
}
