// Package fuzzy scores how alike two descriptions are.
package fuzzy

import (
	"math"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Ratio returns a similarity score between 0 and 100, where 100 means the
// strings are identical. The score is (len(a)+len(b)-distance)/(len(a)+len(b))
// with substitutions costing two edits, the same scale fuzzy-matching tools
// commonly use for payee names.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	r := levenshtein.RatioForStrings(ra, rb, levenshtein.DefaultOptions)
	return int(math.Round(r * 100))
}

// Similarity is Ratio scaled to [0,1].
func Similarity(a, b string) float64 {
	return float64(Ratio(a, b)) / 100
}
