package resolve

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// Strategy bundles the normalization and similarity heuristics used by the
// fuzzy tier of the resolver. It is a swappable value, not a contract: the
// defaults are tuned against the scenario suite, and tests can substitute
// their own.
type Strategy struct {
	// Normalize canonicalizes a string for comparison.
	Normalize func(string) string

	// Similarity scores two normalized strings in [0, 1].
	Similarity func(a, b string) float64

	// Threshold is the minimum similarity for a fuzzy candidate.
	Threshold float64
}

// DefaultStrategy returns the standard matching heuristics: NFKC folding,
// lower-casing, punctuation and whitespace collapsing, naive plural
// stripping, and Levenshtein-based similarity.
func DefaultStrategy() Strategy {
	return Strategy{
		Normalize:  normalizeName,
		Similarity: similarity,
		Threshold:  0.72,
	}
}

// fuzzyMatches reports whether a candidate string matches the needle under
// this strategy: either the normalized needle is contained in the
// normalized candidate, or their similarity clears the threshold.
func (s Strategy) fuzzyMatches(needle, candidate string) bool {
	n := s.Normalize(needle)
	c := s.Normalize(candidate)
	if n == "" || c == "" {
		return false
	}
	if strings.Contains(c, n) {
		return true
	}
	return s.Similarity(n, c) >= s.Threshold
}

func similarity(a, b string) float64 {
	return levenshtein.Match(a, b, nil)
}

// normalizeName lower-cases under NFKC, replaces punctuation with spaces,
// collapses whitespace, and folds trailing plurals per token.
func normalizeName(s string) string {
	folded := strings.ToLower(norm.NFKC.String(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := strings.Fields(b.String())
	for i, tok := range tokens {
		tokens[i] = singular(tok)
	}
	return strings.Join(tokens, " ")
}

// singular strips a naive English plural suffix. Deterministic and cheap;
// good enough for matching codes and labels, not a linguistics library.
func singular(tok string) string {
	switch {
	case len(tok) >= 5 && strings.HasSuffix(tok, "ies"):
		return tok[:len(tok)-3] + "y"
	case len(tok) >= 4 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss"):
		return tok[:len(tok)-1]
	}
	return tok
}
