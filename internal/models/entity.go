// Package models defines core data structures for entities, intents, session
// context and responses.
package models

// EntityType classifies an extracted entity.
type EntityType string

const (
	EntityProduct       EntityType = "PRODUCT"
	EntityArticleNumber EntityType = "ARTICLE_NUMBER"
	EntityEAN           EntityType = "EAN"
	EntityDimension     EntityType = "DIMENSION"
	EntityCompatibility EntityType = "COMPATIBILITY"
)

// EntitySource identifies which extraction pass produced an entity.
type EntitySource string

const (
	SourceRegex        EntitySource = "regex"
	SourceNER          EntitySource = "ner"
	SourceProductIndex EntitySource = "product_index"
	SourceContext      EntitySource = "context"
)

// Entity is a typed span of query text, or an implicit contextual reference
// (Start=End=-1) synthesized from the active product.
type Entity struct {
	Type       EntityType   `json:"type"`
	Text       string       `json:"text"`
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Confidence float64      `json:"confidence"`
	Source     EntitySource `json:"source"`
	// ProductID is set once the entity has been resolved against an index.
	ProductID string `json:"product_id,omitempty"`
	// ContextualReference marks entities synthesized from session state rather
	// than found in the query text.
	ContextualReference bool `json:"is_contextual_reference,omitempty"`
}

// Positioned reports whether the entity occupies an actual span in the query.
func (e *Entity) Positioned() bool {
	return e.Start >= 0 && e.End >= 0
}
