// Package utils provides tiktoken-based token counting and cost estimation.
package utils

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter provides accurate token counting for different models.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter creates a new token counter for the specified model.
// Claude, Gemini and local models do not publish tokenizers, so everything
// is approximated with the GPT-4 encoding.
func NewTokenCounter(model string) (*TokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec for model %s: %w", model, err)
	}

	return &TokenCounter{codec: codec}, nil
}

// CountTokens returns the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(text string) int {
	if tc.codec == nil {
		// Fallback to character-based estimation (4 chars ≈ 1 token)
		return len(text) / 4
	}

	count, err := tc.codec.Count(text)
	if err != nil {
		// Fallback to character-based estimation on error
		return len(text) / 4
	}

	return count
}

// CountTokensSimple provides a simple token counting function without
// requiring a TokenCounter instance. Uses GPT-4 encoding.
func CountTokensSimple(text string) int {
	counter, err := NewTokenCounter("gpt-4")
	if err != nil {
		// Fallback to character-based estimation
		return len(text) / 4
	}
	return counter.CountTokens(text)
}

// modelPricing holds per-million-token USD prices.
type modelPricing struct {
	inputPerMillion  float64
	outputPerMillion float64
}

// pricingTable maps model name prefixes to published per-token pricing.
// Local models (ollama) cost nothing and are intentionally absent.
var pricingTable = map[string]modelPricing{
	"claude-opus":     {15.00, 75.00},
	"claude-sonnet":   {3.00, 15.00},
	"claude-haiku":    {0.80, 4.00},
	"gpt-4o":          {2.50, 10.00},
	"gpt-4o-mini":     {0.15, 0.60},
	"o3":              {2.00, 8.00},
	"o3-mini":         {1.10, 4.40},
	"gemini-2.5-pro":  {1.25, 10.00},
	"gemini-2.5-flash": {0.30, 2.50},
}

// EstimateCost returns the approximate USD cost for a request against the
// named model. Unknown models return zero.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	var best string
	for prefix := range pricingTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0
	}
	pricing := pricingTable[best]
	return float64(inputTokens)/1e6*pricing.inputPerMillion +
		float64(outputTokens)/1e6*pricing.outputPerMillion
}
