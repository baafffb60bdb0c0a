// Package retry provides retry middleware for adapters.
package retry

import (
	"context"
	"fmt"
	"time"

	"langops/pkg/llm"
)

// Middleware returns a middleware that wraps an adapter with retry logic.
// It retries only the adapter's network call; hook execution and output
// validation live outside this wrapper. After the final attempt the last
// error propagates unchanged so the caller sees the provider's own failure.
func Middleware(policy *Policy) llm.Middleware {
	return func(next llm.Adapter) llm.Adapter {
		return llm.WrapAdapter(
			func(ctx context.Context, req llm.Request) (llm.Envelope, error) {
				var lastErr error

				for attempt := 1; attempt <= policy.Config.MaxAttempts; attempt++ {
					if attempt > 1 {
						delay := policy.CalculateDelay(attempt)
						if delay > 0 {
							select {
							case <-ctx.Done():
								return llm.Envelope{}, fmt.Errorf("retry cancelled: %w", ctx.Err())
							case <-time.After(delay):
							}
						}
					}

					resp, err := next.Send(ctx, req)
					if err == nil {
						return resp, nil
					}

					lastErr = err

					// Non-retryable failures propagate immediately, without sleeping.
					if !policy.ShouldRetry(err) {
						break
					}
				}

				return llm.Envelope{}, lastErr
			},
			next.ModelName,
		)
	}
}
