package corpus

import (
	"fmt"
	"sort"

	"github.com/skarvik/produktbot/pkg/utils"
)

const (
	// fuzzyThreshold is the minimum name similarity for a fuzzy match.
	fuzzyThreshold = 0.2
	// shortNamePenalty dampens fuzzy scores for one- and two-word names,
	// which match too easily on a single shared token.
	shortNamePenalty = 0.8
	// correctedTokenWeight dampens hits found through spelling correction.
	correctedTokenWeight = 0.7
)

// Search runs a free-text product search. Exact word-index hits are scored
// first; fuzzy name matching fills in products the word index misses.
func (s *Store) Search(query string, limit int) *SearchResult {
	res := &SearchResult{Query: query}
	tokens := utils.Tokenize(query)
	if len(tokens) == 0 {
		res.Status = "no_results"
		res.Message = "Sökfrågan innehåller inga sökbara ord."
		return res
	}

	scores := make(map[string]float64)

	// Phase 1: token hits against the word index. Tokens with no hits get one
	// chance at spelling correction, at a reduced weight.
	hits := make(map[string]float64)
	for _, tok := range tokens {
		ids := s.textIndex[tok]
		weight := 1.0
		if len(ids) == 0 {
			if corrected, ok := s.spell.correct(tok); ok {
				ids = s.textIndex[corrected]
				weight = correctedTokenWeight
			}
		}
		for _, productID := range ids {
			hits[productID] += weight
		}
	}
	for productID, n := range hits {
		scores[productID] = n / float64(len(tokens))
	}

	// Phase 2: fuzzy matching against product names.
	for name, productID := range s.nameToID {
		score := utils.TokenJaccard(query, name)
		if score <= fuzzyThreshold {
			continue
		}
		if overlap := utils.TokenOverlap(query, name); overlap > 1 {
			score += 0.1 * float64(overlap)
		}
		if len(utils.Tokenize(name)) <= 2 {
			score *= shortNamePenalty
		}
		if score > scores[productID] {
			scores[productID] = score
		}
	}

	if len(scores) == 0 {
		res.Status = "no_results"
		res.Message = fmt.Sprintf("Inga produkter hittades för %q.", query)
		return res
	}

	matches := make([]Match, 0, len(scores))
	for productID, score := range scores {
		matches = append(matches, Match{
			ProductID: productID,
			Name:      s.ProductName(productID),
			Score:     score,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ProductID < matches[j].ProductID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	res.Status = "success"
	res.Matches = matches
	res.FormattedText = FormatSearchResults(query, matches)
	return res
}

// SuggestProducts returns up to limit likely product matches for ambiguous
// queries, used to build clarification options.
func (s *Store) SuggestProducts(query string, limit int) []Match {
	res := s.Search(query, limit)
	if res.Status != "success" {
		return nil
	}
	return res.Matches
}
