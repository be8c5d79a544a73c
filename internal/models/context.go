package models

// MaxQueryHistory bounds the per-session query history (oldest dropped first).
const MaxQueryHistory = 10

// SessionContext is per-session conversation state. It is owned by the caller,
// created empty at session start and never persisted. All mutation goes through
// AppendQuery and the dialog context manager (single-writer contract).
type SessionContext struct {
	ActiveProductID       string   `json:"active_product_id,omitempty"`
	MentionedProducts     []string `json:"mentioned_products,omitempty"`
	PreviousIntent        Intent   `json:"previous_intent,omitempty"`
	QueryHistory          []string `json:"query_history,omitempty"`
	LastMentionedProperty string   `json:"last_mentioned_property,omitempty"`
	// ExpertiseLevel, when set by the caller, overrides the inferred level.
	ExpertiseLevel string `json:"expertise_level,omitempty"`
}

// NewSessionContext returns an empty session context.
func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

// AppendQuery records a query in the history, keeping at most MaxQueryHistory
// entries (FIFO).
func (c *SessionContext) AppendQuery(query string) {
	c.QueryHistory = append(c.QueryHistory, query)
	if len(c.QueryHistory) > MaxQueryHistory {
		c.QueryHistory = c.QueryHistory[len(c.QueryHistory)-MaxQueryHistory:]
	}
}

// MentionProduct appends a product to MentionedProducts, preserving order and
// skipping duplicates.
func (c *SessionContext) MentionProduct(productID string) {
	for _, id := range c.MentionedProducts {
		if id == productID {
			return
		}
	}
	c.MentionedProducts = append(c.MentionedProducts, productID)
}

// QueryDependency classifies how a query depends on prior conversation.
type QueryDependency string

const (
	QueryIndependent QueryDependency = "independent"
	QueryFollowUp    QueryDependency = "follow_up"
	QueryReference   QueryDependency = "reference"
	QueryComparison  QueryDependency = "comparison"
)

// ReferenceKind classifies what a textual reference points at.
type ReferenceKind string

const (
	RefProduct  ReferenceKind = "product"
	RefProperty ReferenceKind = "property"
	RefMultiple ReferenceKind = "multiple"
)

// Reference is a reference span found in the query ("den", "dessa", ...).
type Reference struct {
	Kind  ReferenceKind `json:"type"`
	Text  string        `json:"text"`
	Start int           `json:"start"`
	End   int           `json:"end"`
}

// ResolvedReference is a reference resolved against session state.
type ResolvedReference struct {
	Kind ReferenceKind `json:"type"`
	// ProductID is set for product references.
	ProductID string `json:"product_id,omitempty"`
	// Property is set for property references.
	Property string `json:"property,omitempty"`
	// ProductIDs is set for multiple-product references.
	ProductIDs []string `json:"product_ids,omitempty"`
}

// DialogStage describes where in the conversation the session is.
type DialogStage string

const (
	StageInitial            DialogStage = "initial"
	StageSearch             DialogStage = "search"
	StageProductExploration DialogStage = "product_exploration"
	StageDetailedInquiry    DialogStage = "detailed_inquiry"
)

// ContextAnalysis is the per-request context classification.
type ContextAnalysis struct {
	QueryType       QueryDependency              `json:"query_type"`
	References      []Reference                  `json:"references"`
	Resolved        map[string]ResolvedReference `json:"resolved_entities"`
	ContextProducts []string                     `json:"context_products"`
	PreviousIntent  Intent                       `json:"previous_intent,omitempty"`
}
