// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"properties": {
		"signalType": {"type": "string", "enum": ["AI", "AO", "DI", "DO"]},
		"units": {"type": "string"}
	},
	"required": ["signalType"]
}`

func TestValidateAgainstSchema_Valid(t *testing.T) {
	result, err := ValidateAgainstSchema(map[string]interface{}{
		"signalType": "AI",
		"units":      "bar",
	}, testSchema)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateAgainstSchema_Invalid(t *testing.T) {
	result, err := ValidateAgainstSchema(map[string]interface{}{
		"signalType": "ANALOG",
	}, testSchema)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)

	messages := result.GetErrorMessages()
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "signalType")
}

func TestValidateAgainstSchema_MissingRequired(t *testing.T) {
	result, err := ValidateAgainstSchema(map[string]interface{}{"units": "bar"}, testSchema)

	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateAgainstSchema_BrokenSchema(t *testing.T) {
	_, err := ValidateAgainstSchema(map[string]interface{}{}, "{not a schema")
	assert.Error(t, err)
}
