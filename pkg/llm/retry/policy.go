// Package retry provides bounded exponential backoff for adapter calls.
package retry

import (
	"math"
	"math/rand"
	"time"

	"langops/pkg/llm/llmerrors"
)

// Config defines configuration for retry behavior.
type Config struct {
	MaxAttempts   int           `json:"max_attempts"`   // Total attempts, including the first
	InitialDelay  time.Duration `json:"initial_delay"`  // Base delay before the first retry
	MaxDelay      time.Duration `json:"max_delay"`      // Cap on backoff delay
	BackoffFactor float64       `json:"backoff_factor"` // Multiplier for exponential backoff
	Jitter        bool          `json:"jitter"`         // Add random jitter to prevent thundering herd
}

// DefaultConfig provides reasonable defaults for retry behavior.
//
//nolint:gochecknoglobals // Sensible default config pattern
var DefaultConfig = Config{
	MaxAttempts:   3,
	InitialDelay:  500 * time.Millisecond,
	MaxDelay:      8 * time.Second,
	BackoffFactor: 2.0,
	Jitter:        true,
}

// Classifier determines if an error should be retried.
type Classifier func(error) bool

// Policy encapsulates retry configuration and logic.
type Policy struct {
	Config     Config
	Classifier Classifier
}

// NewPolicy creates a new retry policy. A nil classifier falls back to the
// llmerrors taxonomy: rate limits, server errors, timeouts, and unreachable
// networks retry; everything else propagates immediately.
func NewPolicy(config Config, classifier Classifier) *Policy {
	if classifier == nil {
		classifier = llmerrors.IsRetryable
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig.MaxAttempts
	}
	return &Policy{
		Config:     config,
		Classifier: classifier,
	}
}

// CalculateDelay computes the backoff delay before the given attempt.
// Attempt numbering starts at 1; the first attempt is always immediate.
func (p *Policy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delay := time.Duration(float64(p.Config.InitialDelay) * math.Pow(p.Config.BackoffFactor, float64(attempt-2)))

	if delay > p.Config.MaxDelay {
		delay = p.Config.MaxDelay
	}

	if p.Config.Jitter && delay > 0 {
		jitter := time.Duration(rand.Int63n(int64(delay)/5 + 1)) //nolint:gosec // Jitter needs no crypto randomness
		delay += jitter - delay/10
		if delay < 0 {
			delay = p.Config.InitialDelay
		}
	}

	return delay
}

// ShouldRetry determines if an error should be retried based on the configured classifier.
func (p *Policy) ShouldRetry(err error) bool {
	return p.Classifier(err)
}
