package llmerrors

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Classify maps an arbitrary SDK or transport error to a classified Error.
// Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewErrorWithCause(ErrorTypeTimeout, err, "request timeout")
	}
	if errors.Is(err, context.Canceled) {
		return NewErrorWithCause(ErrorTypeClient, err, "request canceled")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewErrorWithCause(ErrorTypeTimeout, err, "network timeout")
		}
		return NewErrorWithCause(ErrorTypeUnreachable, err, "network error")
	}

	errStr := err.Error()

	// SDKs typically surface HTTP status codes in error messages.
	if code := extractStatusCode(errStr); code != 0 {
		return FromStatusCode(code, err)
	}

	lower := strings.ToLower(errStr)

	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline") {
		return NewErrorWithCause(ErrorTypeTimeout, err, "timeout detected")
	}
	if strings.Contains(lower, "connection") ||
		strings.Contains(lower, "unreachable") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "reset") ||
		strings.Contains(lower, "eof") {
		return NewErrorWithCause(ErrorTypeUnreachable, err, "connection error")
	}
	if strings.Contains(lower, "rate") || strings.Contains(lower, "quota") || strings.Contains(lower, "overloaded") {
		return NewErrorWithCause(ErrorTypeRateLimit, err, "rate limiting detected")
	}

	return NewErrorWithCause(ErrorTypeClient, err, "provider rejected request")
}

// FromStatusCode classifies an HTTP status code from a provider response.
func FromStatusCode(code int, cause error) *Error {
	switch {
	case code == 429:
		return &Error{Type: ErrorTypeRateLimit, StatusCode: code, Err: cause, Message: "rate limit exceeded"}
	case code >= 500 && code < 600:
		return &Error{Type: ErrorTypeServer, StatusCode: code, Err: cause, Message: "provider server error"}
	case code == 408:
		return &Error{Type: ErrorTypeTimeout, StatusCode: code, Err: cause, Message: "request timeout"}
	default:
		return &Error{Type: ErrorTypeClient, StatusCode: code, Err: cause, Message: "provider rejected request"}
	}
}

// extractStatusCode attempts to extract an HTTP status code from an error string.
func extractStatusCode(errStr string) int {
	lower := strings.ToLower(errStr)
	patterns := []string{
		"status code: ",
		"status: ",
		"http ",
		"code ",
	}

	for _, pattern := range patterns {
		idx := strings.Index(lower, pattern)
		if idx == -1 {
			continue
		}
		start := idx + len(pattern)
		if start+3 > len(lower) {
			continue
		}
		switch lower[start : start+3] {
		case "400":
			return 400
		case "401":
			return 401
		case "403":
			return 403
		case "404":
			return 404
		case "408":
			return 408
		case "429":
			return 429
		case "500":
			return 500
		case "502":
			return 502
		case "503":
			return 503
		case "504":
			return 504
		case "529":
			return 529
		}
	}

	return 0
}
