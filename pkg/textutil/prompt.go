package textutil

import (
	"fmt"
	"strings"
)

// In-context learning modes for prompt construction.
const (
	ZeroShot = "zero-shot"
	FewShot  = "few-shot"
)

const sentimentInstruction = `Classify the sentiment. Respond ONLY with JSON:
'{"sentiment": "<positive|neutral|negative>", "confidence": 0..1}.'`

type fewShotExample struct {
	text       string
	sentiment  string
	confidence float64
}

var fewShots = []fewShotExample{
	{"I absolutely love this product! Exceeded expectations.", "positive", 0.95},
	{"Terrible service, complete waste of money.", "negative", 0.92},
	{"The weather is cloudy today.", "neutral", 0.80},
}

// BuildSentimentPrompt renders the sentiment classification prompt for one
// piece of text. Unknown modes fall back to zero-shot.
func BuildSentimentPrompt(text, mode string) string {
	var lines []string
	lines = append(lines, sentimentInstruction)

	if mode == FewShot {
		lines = append(lines, "Examples:")
		for _, ex := range fewShots {
			lines = append(lines, fmt.Sprintf(
				"input: %q\noutput:{\"sentiment\": %q, \"confidence\":%g}",
				ex.text, ex.sentiment, ex.confidence))
		}
	}

	lines = append(lines, "-------YOUR TURN-------")
	lines = append(lines, fmt.Sprintf("Input: %q", text))
	return strings.Join(lines, "\n")
}
