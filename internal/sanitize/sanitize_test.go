package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain string untouched",
			input:    "Calle Mallorca 401",
			expected: "Calle Mallorca 401",
		},
		{
			name:     "strips angle brackets",
			input:    "<script>alert(1)</script>",
			expected: "scriptalert(1)/script",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  Acme Fruits  ",
			expected: "Acme Fruits",
		},
		{
			name:     "trims after stripping brackets",
			input:    " <b> ",
			expected: "b",
		},
		{
			name:     "empty string stays empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, String(tt.input))
		})
	}
}

func TestString_Truncation(t *testing.T) {
	long := strings.Repeat("a", MaxStringLength+100)
	got := String(long)
	assert.Len(t, got, MaxStringLength)

	// Truncation counts runes, not bytes.
	longRunes := strings.Repeat("ñ", MaxStringLength+1)
	got = String(longRunes)
	assert.Equal(t, MaxStringLength, len([]rune(got)))
}

func TestValue(t *testing.T) {
	t.Run("walks nested maps and slices", func(t *testing.T) {
		input := map[string]interface{}{
			"client": "  <Acme>  ",
			"tags":   []interface{}{"<a>", "b"},
			"nested": map[string]interface{}{
				"notes": "leave at <door>",
			},
			"packages": float64(3),
			"fragile":  true,
		}

		got := Value(input).(map[string]interface{})

		assert.Equal(t, "Acme", got["client"])
		assert.Equal(t, []interface{}{"a", "b"}, got["tags"])
		assert.Equal(t, "leave at door", got["nested"].(map[string]interface{})["notes"])
		assert.Equal(t, float64(3), got["packages"])
		assert.Equal(t, true, got["fragile"])
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		input := map[string]interface{}{"client": "<Acme>"}
		Value(input)
		assert.Equal(t, "<Acme>", input["client"])
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, Value(nil))
	})
}
