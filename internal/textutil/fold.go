package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case-folded NFKC form of s with surrounding whitespace removed.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// cases.Caser is stateful; one per call.
	return cases.Fold().String(norm.NFKC.String(s))
}

// ContainsFold reports whether needle is a case-insensitive substring of
// haystack. An empty needle never matches.
func ContainsFold(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// ContainsAllFold reports whether every needle is a case-insensitive substring
// of haystack. An empty needle list never matches.
func ContainsAllFold(haystack string, needles []string) bool {
	if len(needles) == 0 {
		return false
	}
	h := Fold(haystack)
	for _, needle := range needles {
		n := Fold(needle)
		if n == "" || !strings.Contains(h, n) {
			return false
		}
	}
	return true
}
