package llmerrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorRetryability(t *testing.T) {
	retryable := []ErrorType{ErrorTypeRateLimit, ErrorTypeServer, ErrorTypeTimeout, ErrorTypeUnreachable}
	for _, et := range retryable {
		assert.True(t, NewError(et, "boom").IsRetryable(), "type %s should be retryable", et)
	}

	assert.False(t, NewError(ErrorTypeClient, "bad request").IsRetryable())
	assert.False(t, NewError(ErrorTypeStructuredOutputUnavailable, "no schema support").IsRetryable())
}

func TestPackageLevelHelpers(t *testing.T) {
	err := NewErrorWithStatus(ErrorTypeRateLimit, 429, "too many requests")

	assert.True(t, Is(err, ErrorTypeRateLimit))
	assert.False(t, Is(err, ErrorTypeServer))
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(err))
	assert.True(t, IsRetryable(err))

	plain := errors.New("mystery")
	assert.False(t, Is(plain, ErrorTypeRateLimit))
	assert.False(t, IsRetryable(plain))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewErrorWithCause(ErrorTypeUnreachable, cause, "provider unreachable")

	assert.ErrorIs(t, err, cause)

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrorTypeUnreachable, classified.Type)
}

func TestClassifyPassthrough(t *testing.T) {
	original := NewErrorWithStatus(ErrorTypeServer, 503, "service unavailable")
	wrapped := fmt.Errorf("send failed: %w", original)

	classified := Classify(wrapped)
	assert.Equal(t, ErrorTypeServer, classified.Type)
	assert.Equal(t, 503, classified.StatusCode)
}

func TestClassifyContextErrors(t *testing.T) {
	assert.Equal(t, ErrorTypeTimeout, Classify(context.DeadlineExceeded).Type)
	assert.Equal(t, ErrorTypeClient, Classify(context.Canceled).Type)
}

func TestClassifyByStatusCodeInMessage(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorType
	}{
		{"request failed with status code: 429", ErrorTypeRateLimit},
		{"request failed with status code: 500", ErrorTypeServer},
		{"request failed with status code: 503", ErrorTypeServer},
		{"request failed with status code: 408", ErrorTypeTimeout},
		{"request failed with status code: 400", ErrorTypeClient},
		{"request failed with status code: 401", ErrorTypeClient},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			got := Classify(errors.New(tc.msg))
			assert.Equal(t, tc.want, got.Type)
		})
	}
}

func TestFromStatusCode(t *testing.T) {
	assert.Equal(t, ErrorTypeRateLimit, FromStatusCode(429, nil).Type)
	assert.Equal(t, ErrorTypeServer, FromStatusCode(500, nil).Type)
	assert.Equal(t, ErrorTypeServer, FromStatusCode(529, nil).Type)
	assert.Equal(t, ErrorTypeTimeout, FromStatusCode(408, nil).Type)
	assert.Equal(t, ErrorTypeClient, FromStatusCode(404, nil).Type)
}
