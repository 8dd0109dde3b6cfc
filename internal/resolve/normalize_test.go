package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Travel Intake", "travel intake"},
		{"  Employment   Status ", "employment status"},
		{"employer_name", "employer name"},
		{"Categories", "category"},
		{"destinations", "destination"},
		{"pages", "page"},
		{"address", "address"},
		{"gas", "gas"},
		{"Rating (1-5)", "rating 1 5"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in), "input %q", tt.in)
	}
}

func TestFuzzyMatches_Containment(t *testing.T) {
	s := DefaultStrategy()
	assert.True(t, s.fuzzyMatches("destination", "Destination Options"))
	assert.True(t, s.fuzzyMatches("feedback", "Customer Feedback"))
	assert.False(t, s.fuzzyMatches("", "Customer Feedback"))
	assert.False(t, s.fuzzyMatches("feedback", ""))
}

func TestFuzzyMatches_PluralFolding(t *testing.T) {
	s := DefaultStrategy()
	assert.True(t, s.fuzzyMatches("destinations", "destination"))
	assert.True(t, s.fuzzyMatches("category", "categories"))
}

func TestFuzzyMatches_SimilarityThreshold(t *testing.T) {
	s := DefaultStrategy()
	assert.True(t, s.fuzzyMatches("employment staus", "employment status"), "one transposition stays above threshold")
	assert.False(t, s.fuzzyMatches("budget", "employment status"))
}
