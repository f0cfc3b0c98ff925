package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"empty strings", "", "", 0},
		{"empty a", "", "int", 3},
		{"identical", "session", "session", 0},
		{"one char diff", "eval", "evol", 1},
		{"insertion", "sesion", "session", 1},
		{"transposition", "atribtue", "attribute", 3},
		{"case sensitive", "PageSession", "pageSession", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, levenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestFindSimilarStrings(t *testing.T) {
	types := []string{"", "application", "attribute", "boolean", "escape", "eval", "int", "pageSession", "session"}

	t.Run("fuzzy subsequence", func(t *testing.T) {
		result := FindSimilarStrings("sesion", types, 3)
		assert.Contains(t, result, "session")
		assert.LessOrEqual(t, len(result), 3)
	})

	t.Run("edit distance fallback", func(t *testing.T) {
		result := FindSimilarStrings("atribtue", types, 3)
		assert.Contains(t, result, "attribute")
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, FindSimilarStrings("requestParameterXYZ", []string{"x", "y"}, 3))
	})

	t.Run("respects limit", func(t *testing.T) {
		result := FindSimilarStrings("e", types, 2)
		assert.Len(t, result, 2)
	})

	t.Run("skips empty candidate", func(t *testing.T) {
		assert.Equal(t, []string{"y"}, FindSimilarStrings("x", []string{"", "y"}, 3))
	})

	t.Run("zero limit", func(t *testing.T) {
		assert.Nil(t, FindSimilarStrings("int", types, 0))
	})
}
