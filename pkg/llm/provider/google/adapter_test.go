package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"langops/pkg/schema"
)

func TestConvertSchema(t *testing.T) {
	desc := schema.NewDescriptor("sentiment", map[string]schema.Field{
		"sentiment": {
			Type: schema.TypeString,
			Enum: []string{"positive", "neutral", "negative"},
		},
		"confidence": {
			Type:    schema.TypeNumber,
			Minimum: schema.Float(0),
			Maximum: schema.Float(1),
		},
		"note": {Type: schema.TypeString, Optional: true},
	})

	converted, err := convertSchema(desc)
	require.NoError(t, err)
	assert.Equal(t, genai.TypeObject, converted.Type)
	assert.Len(t, converted.Properties, 3)
	assert.ElementsMatch(t, []string{"confidence", "sentiment"}, converted.Required)

	sentiment := converted.Properties["sentiment"]
	require.NotNil(t, sentiment)
	assert.Equal(t, genai.TypeString, sentiment.Type)
	assert.Equal(t, []string{"positive", "neutral", "negative"}, sentiment.Enum)

	confidence := converted.Properties["confidence"]
	require.NotNil(t, confidence)
	assert.Equal(t, genai.TypeNumber, confidence.Type)
	require.NotNil(t, confidence.Minimum)
	assert.Zero(t, *confidence.Minimum)
}

func TestConvertSchemaUnsupportedType(t *testing.T) {
	desc := schema.NewDescriptor("odd", map[string]schema.Field{
		"blob": {Type: schema.FieldType("object")},
	})

	_, err := convertSchema(desc)
	assert.Error(t, err)
}
