package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalar_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"string", `"12.50"`, "12.50"},
		{"number", `12.5`, "12.5"},
		{"integer", `7`, "7"},
		{"bool", `true`, "true"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Scalar
			require.NoError(t, json.Unmarshal([]byte(tt.in), &s))
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestScalar_RejectsComposites(t *testing.T) {
	var s Scalar
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &s))
}

func TestProductRequest_Fields(t *testing.T) {
	var req ProductRequest
	body := `{"name":"Ring","price":25,"stock":"3","is_active":true,"category_id":null,"existingImages":["a.webp"]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	fields := req.Fields()
	assert.Equal(t, "Ring", fields["name"])
	assert.Equal(t, "25", fields["price"])
	assert.Equal(t, "3", fields["stock"])
	assert.Equal(t, "true", fields["is_active"])
	assert.Equal(t, "", fields["category_id"])
	assert.Equal(t, []string{"a.webp"}, req.ExistingImages)
}

func TestProductRequest_HighlightFlagsOnlyWhenPresent(t *testing.T) {
	var req ProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"is_featured":false,"is_trending":null}`), &req))

	fields := req.Fields()
	assert.Equal(t, "false", fields["is_featured"])
	_, ok := fields["is_trending"]
	assert.False(t, ok)
}
