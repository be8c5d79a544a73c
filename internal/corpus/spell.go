package corpus

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/skarvik/produktbot/pkg/utils"
)

// minCorrectableLength skips very short tokens, where an edit distance of one
// already reaches unrelated words.
const minCorrectableLength = 4

// corrector suggests replacements for query tokens that miss the word index.
// It is built once from the index terms and product name tokens and is
// read-only afterwards.
type corrector struct {
	terms []string
	// freq counts how many products each term points to, used to rank
	// candidates at equal edit distance.
	freq map[string]int
}

func newCorrector(textIndex map[string][]string, names map[string]string) *corrector {
	c := &corrector{freq: make(map[string]int)}
	for term, ids := range textIndex {
		c.freq[term] += len(ids)
	}
	for name := range names {
		for _, tok := range utils.Tokenize(name) {
			if _, ok := c.freq[tok]; !ok {
				c.freq[tok] = 1
			}
		}
	}
	c.terms = make([]string, 0, len(c.freq))
	for term := range c.freq {
		c.terms = append(c.terms, term)
	}
	sort.Strings(c.terms)
	return c
}

// correct returns the best known term within the allowed edit distance of tok,
// or false when tok is already known or nothing is close enough.
func (c *corrector) correct(tok string) (string, bool) {
	tok = strings.ToLower(tok)
	if utf8.RuneCountInString(tok) < minCorrectableLength {
		return "", false
	}
	if _, ok := c.freq[tok]; ok {
		return "", false
	}

	maxDist := 1
	if utf8.RuneCountInString(tok) >= 7 {
		maxDist = 2
	}

	best := ""
	bestScore := 0.0
	for _, term := range c.terms {
		lenDiff := utf8.RuneCountInString(term) - utf8.RuneCountInString(tok)
		if lenDiff < -maxDist || lenDiff > maxDist {
			continue
		}
		dist := editDistance(tok, term)
		if dist > maxDist {
			continue
		}
		score := float64(c.freq[term]) / float64(dist+1)
		if score > bestScore {
			best = term
			bestScore = score
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// editDistance is the Damerau-Levenshtein distance: insertions, deletions,
// substitutions and adjacent transpositions each count as one edit. Operates
// on runes so Swedish letters count as single characters.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		d[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			v := d[i-1][j] + 1
			if ins := d[i][j-1] + 1; ins < v {
				v = ins
			}
			if sub := d[i-1][j-1] + cost; sub < v {
				v = sub
			}
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if tr := d[i-2][j-2] + cost; tr < v {
					v = tr
				}
			}
			d[i][j] = v
		}
	}
	return d[len(ra)][len(rb)]
}
