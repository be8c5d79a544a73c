// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strings"
	"unicode"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Tokenize lowercases s and splits it into tokens on anything that is not a
// letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TokenSet returns the set of tokens in s.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

// TokenJaccard returns the Jaccard similarity between the token sets of a and b.
// Two empty strings yield 0.
func TokenJaccard(a, b string) float64 {
	sa := TokenSet(a)
	sb := TokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TokenOverlap returns the number of tokens shared by a and b.
func TokenOverlap(a, b string) int {
	sa := TokenSet(a)
	n := 0
	for tok := range TokenSet(b) {
		if _, ok := sa[tok]; ok {
			n++
		}
	}
	return n
}
