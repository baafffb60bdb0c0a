package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			"simple",
			"First sentence. Second sentence! Third?",
			[]string{"First sentence.", "Second sentence!", "Third?"},
		},
		{
			"newlines split",
			"Line one\nLine two\n\nLine three",
			[]string{"Line one", "Line two", "Line three"},
		},
		{
			"surrounding whitespace",
			"  Hello there.   General greeting.  ",
			[]string{"Hello there.", "General greeting."},
		},
		{
			"ellipsis stays together",
			"Well... maybe. Sure.",
			[]string{"Well...", "maybe.", "Sure."},
		},
		{
			"no terminal punctuation",
			"just a fragment",
			[]string{"just a fragment"},
		},
		{"empty", "", nil},
		{"only whitespace", "  \n\t ", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitSentences(tc.in))
		})
	}
}

func TestBuildSentimentPromptZeroShot(t *testing.T) {
	prompt := BuildSentimentPrompt("I love it.", ZeroShot)

	assert.Contains(t, prompt, "Classify the sentiment")
	assert.Contains(t, prompt, `Input: "I love it."`)
	assert.NotContains(t, prompt, "Examples:")
}

func TestBuildSentimentPromptFewShot(t *testing.T) {
	prompt := BuildSentimentPrompt("I love it.", FewShot)

	assert.Contains(t, prompt, "Examples:")
	assert.Contains(t, prompt, "Terrible service")
	assert.Contains(t, prompt, `Input: "I love it."`)
}

func TestBuildSentimentPromptUnknownModeFallsBack(t *testing.T) {
	assert.Equal(t,
		BuildSentimentPrompt("text", ZeroShot),
		BuildSentimentPrompt("text", "nonsense"))
}
