// Package textutil holds text preparation helpers for analysis tasks.
package textutil

import (
	"regexp"
	"strings"
)

// sentenceEnd matches a run of terminal punctuation followed by whitespace,
// or a newline run. The punctuation stays with the preceding sentence.
var sentenceEnd = regexp.MustCompile(`[.!?]+\s+|\n+`)

// SplitSentences breaks text into trimmed sentences. Terminal punctuation is
// kept; empty fragments are dropped.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		// Keep the punctuation, drop the trailing whitespace.
		end := loc[1]
		for end > loc[0] && isSpaceByte(text[end-1]) {
			end--
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
