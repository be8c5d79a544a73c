// Package nlp implements query preprocessing and entity extraction for
// Swedish product queries.
package nlp

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	doubleDashRe  = regexp.MustCompile(`--+`)
	ellipsisRe    = regexp.MustCompile(`\.\.+`)
	doubleQuoteRe = regexp.MustCompile("[“”„]")
	singleQuoteRe = regexp.MustCompile("[‘’`]")
)

// Preprocess normalizes a raw query before extraction: whitespace is
// collapsed, unicode is folded to composed NFKC form, and punctuation
// variants are folded to their plain forms. NFKC keeps Swedish letters as
// single code points so literal comparisons against index data hold.
func Preprocess(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	text = norm.NFKC.String(text)
	text = doubleDashRe.ReplaceAllString(text, "-")
	text = ellipsisRe.ReplaceAllString(text, "...")
	text = doubleQuoteRe.ReplaceAllString(text, `"`)
	text = singleQuoteRe.ReplaceAllString(text, "'")
	return text
}
