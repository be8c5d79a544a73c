package models

import "time"

// Status values carried by responses and data-access results.
const (
	StatusSuccess            = "success"
	StatusError              = "error"
	StatusNeedsClarification = "needs_clarification"
	StatusLowConfidence      = "low_confidence"
	StatusNoResults          = "no_results"
)

// QueryAnalysis bundles everything the pipeline learned about one query.
type QueryAnalysis struct {
	OriginalText  string           `json:"original_text"`
	CleanedText   string           `json:"cleaned_text"`
	Entities      []Entity         `json:"entities"`
	Intent        *IntentAnalysis  `json:"intent,omitempty"`
	Context       *ContextAnalysis `json:"context,omitempty"`
	TargetProduct string           `json:"target_product,omitempty"`
}

// ClarificationOption is one choice offered in a clarification question.
type ClarificationOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ClarificationQuestion asks the user to disambiguate.
type ClarificationQuestion struct {
	// Kind is "product_selection" or "intent_selection".
	Kind    string                `json:"type"`
	Text    string                `json:"text"`
	Options []ClarificationOption `json:"options,omitempty"`
}

// Response is the engine's reply to one input.
type Response struct {
	Status        string                 `json:"status"`
	Type          string                 `json:"type,omitempty"`
	Text          string                 `json:"text"`
	ProductID     string                 `json:"product_id,omitempty"`
	Intent        Intent                 `json:"intent,omitempty"`
	Confidence    float64                `json:"confidence,omitempty"`
	Entities      []Entity               `json:"entities,omitempty"`
	Clarification *ClarificationQuestion `json:"clarification,omitempty"`
	Cached        bool                   `json:"cached,omitempty"`
	ProcessingMS  int64                  `json:"processing_ms"`
	Timestamp     time.Time              `json:"timestamp"`
}
