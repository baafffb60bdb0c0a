package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langops/pkg/llm"
	"langops/pkg/llm/llmerrors"
)

func fastPolicy(maxAttempts int) *Policy {
	return NewPolicy(Config{
		MaxAttempts:   maxAttempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        false,
	}, nil)
}

func testRequest() llm.Request {
	return llm.NewRequest([]llm.Message{llm.NewUserMessage("hello")})
}

func TestRetrySucceedsAfterTransientErrors(t *testing.T) {
	mock := llm.NewMockAdapter(
		[]llm.Envelope{{Content: "ok"}},
		[]error{
			llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "slow down"),
			llmerrors.NewError(llmerrors.ErrorTypeServer, "oops"),
		},
	)
	adapter := llm.Chain(mock, Middleware(fastPolicy(3)))

	resp, err := adapter.Send(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, mock.Calls())
}

func TestRetryExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	lastErr := llmerrors.NewErrorWithStatus(llmerrors.ErrorTypeServer, 503, "still down")
	mock := llm.NewMockAdapter(nil, []error{
		llmerrors.NewError(llmerrors.ErrorTypeServer, "down"),
		llmerrors.NewError(llmerrors.ErrorTypeServer, "down again"),
		lastErr,
	})
	adapter := llm.Chain(mock, Middleware(fastPolicy(3)))

	_, err := adapter.Send(context.Background(), testRequest())
	// The final attempt's error surfaces as-is, not wrapped in a retry error.
	assert.Same(t, error(lastErr), err)
	assert.Equal(t, 3, mock.Calls())
}

func TestNoRetryOnClientError(t *testing.T) {
	mock := llm.NewMockAdapter(nil, []error{
		llmerrors.NewError(llmerrors.ErrorTypeClient, "bad request"),
	})
	adapter := llm.Chain(mock, Middleware(fastPolicy(5)))

	_, err := adapter.Send(context.Background(), testRequest())
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeClient))
	assert.Equal(t, 1, mock.Calls())
}

func TestNoRetryOnStructuredOutputUnavailable(t *testing.T) {
	mock := llm.NewMockAdapter(nil, []error{
		llmerrors.NewError(llmerrors.ErrorTypeStructuredOutputUnavailable, "schema unsupported"),
	})
	adapter := llm.Chain(mock, Middleware(fastPolicy(5)))

	_, err := adapter.Send(context.Background(), testRequest())
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeStructuredOutputUnavailable))
	assert.Equal(t, 1, mock.Calls())
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	mock := llm.NewMockAdapter(nil, []error{
		llmerrors.NewError(llmerrors.ErrorTypeServer, "down"),
		llmerrors.NewError(llmerrors.ErrorTypeServer, "down"),
	})
	policy := NewPolicy(Config{
		MaxAttempts:   3,
		InitialDelay:  time.Hour,
		MaxDelay:      time.Hour,
		BackoffFactor: 2.0,
	}, nil)
	adapter := llm.Chain(mock, Middleware(policy))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := adapter.Send(ctx, testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.Calls())
}
