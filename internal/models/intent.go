package models

// Intent is the user's high-level goal for a query.
type Intent string

const (
	IntentTechnical     Intent = "technical"
	IntentCompatibility Intent = "compatibility"
	IntentSummary       Intent = "summary"
	IntentSearch        Intent = "search"
)

// AllIntents returns the fixed intent set in a stable order.
func AllIntents() []Intent {
	return []Intent{IntentTechnical, IntentCompatibility, IntentSummary, IntentSearch}
}

// DisplayName returns the Swedish display name used in user-facing text.
func (i Intent) DisplayName() string {
	switch i {
	case IntentTechnical:
		return "tekniska specifikationer"
	case IntentCompatibility:
		return "kompatibilitetsinformation"
	case IntentSummary:
		return "produktsammanfattning"
	case IntentSearch:
		return "produktsökning"
	}
	return string(i)
}

// IntentScore pairs an intent with its combined score.
type IntentScore struct {
	Intent Intent  `json:"intent"`
	Score  float64 `json:"score"`
}

// IntentAnalysis is the result of intent scoring. Scores are in [0,1] and are
// not normalized to sum to 1.
type IntentAnalysis struct {
	// Intents is sorted by score descending (ties broken by intent name).
	Intents    []IntentScore `json:"intents"`
	Primary    Intent        `json:"primary_intent"`
	Confidence float64       `json:"confidence"`

	// Per-signal scores, kept for diagnostics and tests.
	KeywordScores  map[Intent]float64 `json:"keyword_based,omitempty"`
	SemanticScores map[Intent]float64 `json:"semantic_based,omitempty"`
	EntityScores   map[Intent]float64 `json:"entity_based,omitempty"`
	ContextScores  map[Intent]float64 `json:"context_based,omitempty"`
}
