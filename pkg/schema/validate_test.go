package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentimentDescriptor() *Descriptor {
	return NewDescriptor("sentiment", map[string]Field{
		"sentiment": {
			Type: TypeString,
			Enum: []string{"positive", "neutral", "negative"},
		},
		"confidence": {
			Type:    TypeNumber,
			Minimum: Float(0),
			Maximum: Float(1),
		},
	})
}

func TestValidateStrictSuccess(t *testing.T) {
	d := sentimentDescriptor()

	parsed, canonical, err := d.Validate(`{"sentiment": "positive", "confidence": 0.95}`)
	require.NoError(t, err)
	assert.Equal(t, "positive", parsed["sentiment"])
	assert.InDelta(t, 0.95, parsed["confidence"], 1e-9)
	// Canonical form sorts keys and drops undeclared fields.
	assert.Equal(t, `{"confidence":0.95,"sentiment":"positive"}`, canonical)
}

func TestValidateDropsUndeclaredFields(t *testing.T) {
	d := sentimentDescriptor()

	parsed, canonical, err := d.Validate(`{"sentiment":"neutral","confidence":0.5,"reasoning":"meh"}`)
	require.NoError(t, err)
	assert.NotContains(t, parsed, "reasoning")
	assert.Equal(t, `{"confidence":0.5,"sentiment":"neutral"}`, canonical)
}

func TestValidateRejections(t *testing.T) {
	d := sentimentDescriptor()

	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `the sentiment is positive`},
		{"json array", `[1, 2, 3]`},
		{"enum violation", `{"sentiment": "ecstatic", "confidence": 0.9}`},
		{"confidence above range", `{"sentiment": "positive", "confidence": 1.5}`},
		{"confidence below range", `{"sentiment": "positive", "confidence": -0.1}`},
		{"missing field", `{"sentiment": "positive"}`},
		{"wrong type", `{"sentiment": "positive", "confidence": "high"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := d.Validate(tc.raw)
			assert.Error(t, err)
		})
	}
}

func TestValidateOptionalField(t *testing.T) {
	d := NewDescriptor("annotated", map[string]Field{
		"label": {Type: TypeString},
		"note":  {Type: TypeString, Optional: true},
	})

	parsed, _, err := d.Validate(`{"label": "ok"}`)
	require.NoError(t, err)
	assert.NotContains(t, parsed, "note")
}

func TestRepairEmbeddedJSON(t *testing.T) {
	d := sentimentDescriptor()

	raw := `Sure! Here is the classification you asked for:
{"sentiment": "negative", "confidence": 0.92}
Let me know if you need anything else.`

	parsed, canonical, err := d.Repair(raw)
	require.NoError(t, err)
	assert.Equal(t, "negative", parsed["sentiment"])
	assert.InDelta(t, 0.92, parsed["confidence"], 1e-9)
	assert.Equal(t, `{"confidence":0.92,"sentiment":"negative"}`, canonical)
}

func TestRepairScrapesFreeText(t *testing.T) {
	d := sentimentDescriptor()

	parsed, _, err := d.Repair(`The text reads as positive, confidence: 0.8`)
	require.NoError(t, err)
	assert.Equal(t, "positive", parsed["sentiment"])
	assert.InDelta(t, 0.8, parsed["confidence"], 1e-9)
}

func TestRepairIgnoresOutOfRangeNumbers(t *testing.T) {
	d := sentimentDescriptor()

	// 95 is outside [0,1]; the only usable number is 0.95.
	parsed, _, err := d.Repair(`negative sentiment, roughly 95 percent sure (0.95)`)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, parsed["confidence"], 1e-9)
}

func TestRepairFailsOnHopelessText(t *testing.T) {
	d := sentimentDescriptor()

	_, _, err := d.Repair(`I am unable to comply with that request.`)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	canonical, ok := Normalize(` {"b": 2, "a": 1} `)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1,"b":2}`, canonical)

	_, ok = Normalize(`not json at all`)
	assert.False(t, ok)
}
