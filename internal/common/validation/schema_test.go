package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["email"],
	"properties": {
		"email": {"type": "string", "maxLength": 10},
		"count": {"type": "integer", "minimum": 1}
	}
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name      string
		document  interface{}
		wantValid bool
		wantCode  string
	}{
		{"valid", map[string]interface{}{"email": "a@b.edu"}, true, ""},
		{"missing required", map[string]interface{}{"count": 2}, false, "required"},
		{"wrong type", map[string]interface{}{"email": 42}, false, "invalid_type"},
		{"too long", map[string]interface{}{"email": "someone@mergington.edu"}, false, "string_lte"},
		{"below minimum", map[string]interface{}{"email": "a@b", "count": 0}, false, "number_gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.document)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.NotEmpty(t, result.GetErrorMessages())
			}
			if tt.wantCode != "" {
				assert.True(t, result.HasErrorCode(tt.wantCode), "errors: %v", result.Errors)
			}
		})
	}
}

func TestSchema_ValidateJSON(t *testing.T) {
	schema := MustCompile(testSchema)

	result, err := schema.ValidateJSON([]byte(`{"email": "x@y.z"}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = schema.ValidateJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{"type": 12}`) })
}
