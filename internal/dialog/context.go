package dialog

import (
	"strings"

	"github.com/skarvik/produktbot/internal/models"
)

// Context-dependency cue phrases, checked in order: a follow-up phrase wins
// over a bare reference, which wins over a comparison phrase.
var dependencyTerms = []struct {
	kind  models.QueryDependency
	terms []string
}{
	{models.QueryFollowUp, []string{"mer", "fortsätt", "berätta mer", "och", "också"}},
	{models.QueryReference, []string{"den", "denna", "det", "dessa", "dom", "dom här", "den där", "detta"}},
	{models.QueryComparison, []string{"jämfört med", "kontra", "vs", "versus", "jämför", "skillnad", "skillnaden mellan"}},
}

// Reference keywords per kind, checked in order: product, property, multiple.
var referenceTerms = []struct {
	kind     models.ReferenceKind
	keywords []string
}{
	{models.RefProduct, []string{"den", "denna", "den här", "produkten", "artikeln"}},
	{models.RefProperty, []string{"det", "detta", "den egenskapen", "den funktionen"}},
	{models.RefMultiple, []string{"dessa", "de", "dom", "de här", "dom här", "produkterna"}},
}

// ContextManager classifies queries against session state and resolves
// back-references. It holds no state of its own; the session context is the
// single source of truth and only Update mutates it.
type ContextManager struct{}

// NewContextManager returns a context manager.
func NewContextManager() *ContextManager {
	return &ContextManager{}
}

// Analyze classifies how the query depends on the conversation and resolves
// any references against the session.
func (m *ContextManager) Analyze(query string, sessionCtx *models.SessionContext) *models.ContextAnalysis {
	if sessionCtx == nil {
		sessionCtx = models.NewSessionContext()
	}

	analysis := &models.ContextAnalysis{
		QueryType:      m.classify(query, sessionCtx),
		Resolved:       map[string]models.ResolvedReference{},
		PreviousIntent: sessionCtx.PreviousIntent,
	}
	if sessionCtx.ActiveProductID != "" {
		analysis.ContextProducts = append(analysis.ContextProducts, sessionCtx.ActiveProductID)
	}

	switch analysis.QueryType {
	case models.QueryFollowUp, models.QueryReference, models.QueryComparison:
		analysis.References = identifyReferences(query)
		analysis.Resolved = resolveReferences(analysis.References, sessionCtx)
	}
	return analysis
}

func (m *ContextManager) classify(query string, sessionCtx *models.SessionContext) models.QueryDependency {
	queryLower := strings.ToLower(query)

	for _, group := range dependencyTerms {
		for _, term := range group.terms {
			if strings.Contains(queryLower, term) {
				return group.kind
			}
		}
	}

	// A very short query with an active product is read as a follow-up.
	if len(strings.Fields(queryLower)) <= 3 && sessionCtx.ActiveProductID != "" {
		return models.QueryFollowUp
	}
	return models.QueryIndependent
}

func identifyReferences(query string) []models.Reference {
	queryLower := strings.ToLower(query)
	var references []models.Reference

	for _, group := range referenceTerms {
		for _, keyword := range group.keywords {
			idx := strings.Index(queryLower, keyword)
			if idx < 0 {
				continue
			}
			references = append(references, models.Reference{
				Kind:  group.kind,
				Text:  keyword,
				Start: idx,
				End:   idx + len(keyword),
			})
		}
	}
	return references
}

func resolveReferences(references []models.Reference, sessionCtx *models.SessionContext) map[string]models.ResolvedReference {
	resolved := make(map[string]models.ResolvedReference)

	for _, ref := range references {
		switch ref.Kind {
		case models.RefProduct:
			if sessionCtx.ActiveProductID != "" {
				resolved[ref.Text] = models.ResolvedReference{
					Kind:      models.RefProduct,
					ProductID: sessionCtx.ActiveProductID,
				}
			}
		case models.RefProperty:
			if sessionCtx.LastMentionedProperty != "" {
				resolved[ref.Text] = models.ResolvedReference{
					Kind:     models.RefProperty,
					Property: sessionCtx.LastMentionedProperty,
				}
			}
		case models.RefMultiple:
			if len(sessionCtx.MentionedProducts) > 0 {
				resolved[ref.Text] = models.ResolvedReference{
					Kind:       models.RefMultiple,
					ProductIDs: sessionCtx.MentionedProducts,
				}
			}
		}
	}
	return resolved
}

// Update records the outcome of a handled query in the session: the product
// it ended up concerning, the property touched, and the resolved intent.
// Query history is appended by the engine before analysis, not here.
func (m *ContextManager) Update(sessionCtx *models.SessionContext, productID, property string, primaryIntent models.Intent) {
	if sessionCtx == nil {
		return
	}
	if productID != "" {
		sessionCtx.ActiveProductID = productID
		sessionCtx.MentionProduct(productID)
	}
	if property != "" {
		sessionCtx.LastMentionedProperty = property
	}
	if primaryIntent != "" {
		sessionCtx.PreviousIntent = primaryIntent
	}
}

// ConversationState is a snapshot of where the dialog stands.
type ConversationState struct {
	ActiveProductID   string             `json:"active_product_id,omitempty"`
	Stage             models.DialogStage `json:"dialog_stage"`
	MentionedProducts []string           `json:"mentioned_products,omitempty"`
	PreviousIntent    models.Intent      `json:"previous_intent,omitempty"`
}

// State derives the current dialog stage from the session.
func (m *ContextManager) State(sessionCtx *models.SessionContext) ConversationState {
	state := ConversationState{
		ActiveProductID:   sessionCtx.ActiveProductID,
		MentionedProducts: sessionCtx.MentionedProducts,
		PreviousIntent:    sessionCtx.PreviousIntent,
	}

	switch {
	case len(sessionCtx.QueryHistory) == 0:
		state.Stage = models.StageInitial
	case sessionCtx.ActiveProductID != "":
		if sessionCtx.PreviousIntent == models.IntentTechnical || sessionCtx.PreviousIntent == models.IntentCompatibility {
			state.Stage = models.StageDetailedInquiry
		} else {
			state.Stage = models.StageProductExploration
		}
	default:
		state.Stage = models.StageSearch
	}
	return state
}
