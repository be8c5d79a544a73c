package nlp

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/models"
	"github.com/skarvik/produktbot/pkg/utils"
)

// ProductIndex is the corpus lookup surface the extractor needs.
type ProductIndex interface {
	NameToID() map[string]string
	LookupArticleNumber(article string) (string, bool)
	LookupEAN(ean string) (string, bool)
	ProductName(productID string) string
}

// Extraction pass confidences.
const (
	articleConfidence    = 0.9
	eanConfidence        = 0.95
	dimensionConfidence  = 0.85
	dictionaryConfidence = 0.9
	contextConfidence    = 0.8
)

// nameMatchThreshold is the minimum name similarity for resolving a PRODUCT
// entity against the name index.
const nameMatchThreshold = 0.8

// Group 1 of the labeled patterns carries the code itself. Bare codes are
// found by scanning maximal digit runs instead, so adjacent codes separated
// by a single character are all seen.
var (
	articleLabeledRe = regexp.MustCompile(`(?i)art(?:ikel)?\.?(?:nr|nummer)\.?\s*[:=]?\s*([A-Za-z0-9\-]{5,15})`)
	eanLabeled13Re   = regexp.MustCompile(`(?i)EAN(?:-13)?[:.\-]?\s*([0-9]{13})(?:$|[^0-9])`)
	eanLabeled8Re    = regexp.MustCompile(`(?i)EAN(?:-8)?[:.\-]?\s*([0-9]{8})(?:$|[^0-9])`)
	dimensionRe      = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?\s*(?:mm|cm|m|tum)\b`)
	digitRunRe       = regexp.MustCompile(`[0-9]+`)
)

// anaphors are the Swedish back-reference words that point at the active
// product ("vad väger den?").
var anaphors = []string{"den", "denna", "det", "produkten", "artikeln"}

// Extractor combines NER, pattern matching, name-dictionary matching and
// context resolution into one entity list per query.
type Extractor struct {
	index      ProductIndex
	recognizer EntityRecognizer
	logger     *zap.Logger
}

// NewExtractor creates an extractor over the given product index.
func NewExtractor(index ProductIndex, recognizer EntityRecognizer, logger *zap.Logger) *Extractor {
	if recognizer == nil {
		recognizer = NewNoopRecognizer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{index: index, recognizer: recognizer, logger: logger}
}

// Extract runs all passes over the preprocessed text and returns merged,
// enriched entities. sessionCtx may be nil for context-free extraction.
func (e *Extractor) Extract(text string, sessionCtx *models.SessionContext) []models.Entity {
	var entities []models.Entity
	entities = append(entities, e.recognizer.Recognize(text)...)
	entities = append(entities, e.extractPatternEntities(text)...)
	entities = append(entities, e.extractDictionaryEntities(text)...)
	if sessionCtx != nil {
		entities = append(entities, e.extractContextEntities(text, sessionCtx)...)
	}

	entities = MergeOverlapping(entities)
	return e.enrich(entities)
}

func (e *Extractor) extractPatternEntities(text string) []models.Entity {
	var entities []models.Entity

	addGroup1 := func(re *regexp.Regexp, entityType models.EntityType, confidence float64, validate func(string) bool) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2], m[3]
			if start < 0 {
				continue
			}
			code := text[start:end]
			if validate != nil && !validate(code) {
				continue
			}
			entities = append(entities, models.Entity{
				Type:       entityType,
				Text:       code,
				Start:      start,
				End:        end,
				Confidence: confidence,
				Source:     models.SourceRegex,
			})
		}
	}

	addRun := func(length int, entityType models.EntityType, confidence float64, validate func(string) bool) {
		for _, m := range digitRunRe.FindAllStringIndex(text, -1) {
			if m[1]-m[0] != length {
				continue
			}
			code := text[m[0]:m[1]]
			if validate != nil && !validate(code) {
				continue
			}
			entities = append(entities, models.Entity{
				Type:       entityType,
				Text:       code,
				Start:      m[0],
				End:        m[1],
				Confidence: confidence,
				Source:     models.SourceRegex,
			})
		}
	}

	addGroup1(articleLabeledRe, models.EntityArticleNumber, articleConfidence, nil)
	addRun(8, models.EntityArticleNumber, articleConfidence, nil)
	addGroup1(eanLabeled13Re, models.EntityEAN, eanConfidence, ValidEAN)
	addRun(13, models.EntityEAN, eanConfidence, ValidEAN)
	addGroup1(eanLabeled8Re, models.EntityEAN, eanConfidence, ValidEAN)

	for _, m := range dimensionRe.FindAllStringIndex(text, -1) {
		entities = append(entities, models.Entity{
			Type:       models.EntityDimension,
			Text:       text[m[0]:m[1]],
			Start:      m[0],
			End:        m[1],
			Confidence: dimensionConfidence,
			Source:     models.SourceRegex,
		})
	}
	return entities
}

// extractDictionaryEntities matches known product names as substrings,
// recording every occurrence with the original capitalization.
func (e *Extractor) extractDictionaryEntities(text string) []models.Entity {
	var entities []models.Entity
	textLower := strings.ToLower(text)

	for name, productID := range e.index.NameToID() {
		if name == "" {
			continue
		}
		for from := 0; ; {
			idx := strings.Index(textLower[from:], name)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(name)
			entities = append(entities, models.Entity{
				Type:       models.EntityProduct,
				Text:       text[start:end],
				Start:      start,
				End:        end,
				Confidence: dictionaryConfidence,
				Source:     models.SourceProductIndex,
				ProductID:  productID,
			})
			from = start + 1
		}
	}
	return entities
}

// extractContextEntities synthesizes a PRODUCT entity for the active product
// when the query refers back to it with an anaphor.
func (e *Extractor) extractContextEntities(text string, sessionCtx *models.SessionContext) []models.Entity {
	if sessionCtx.ActiveProductID == "" {
		return nil
	}

	tokens := strings.Fields(strings.ToLower(text))
	for i, tok := range tokens {
		tokens[i] = strings.Trim(tok, ".,!?:;\"'")
	}
	for _, ref := range anaphors {
		for _, tok := range tokens {
			if tok != ref {
				continue
			}
			name := e.index.ProductName(sessionCtx.ActiveProductID)
			return []models.Entity{{
				Type:                models.EntityProduct,
				Text:                name,
				Start:               -1,
				End:                 -1,
				Confidence:          contextConfidence,
				Source:              models.SourceContext,
				ProductID:           sessionCtx.ActiveProductID,
				ContextualReference: true,
			}}
		}
	}
	return nil
}

// MergeOverlapping collapses entities whose spans overlap, keeping the one
// with strictly higher confidence. Contextual entities (negative positions)
// never overlap anything and always survive. The operation is idempotent.
func MergeOverlapping(entities []models.Entity) []models.Entity {
	if len(entities) == 0 {
		return nil
	}

	sorted := make([]models.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return len(sorted[i].Text) > len(sorted[j].Text)
	})

	merged := make([]models.Entity, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if current.End >= next.Start && next.Start >= 0 && current.End >= 0 {
			if next.Confidence > current.Confidence {
				current = next
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

// enrich resolves entities against the corpus indices: products get IDs from
// name matching, and article numbers and EAN codes that resolve to a product
// are retyped as PRODUCT.
func (e *Extractor) enrich(entities []models.Entity) []models.Entity {
	enriched := make([]models.Entity, 0, len(entities))
	for _, entity := range entities {
		switch entity.Type {
		case models.EntityProduct:
			if entity.ProductID == "" {
				if productID := e.resolveProductName(entity.Text); productID != "" {
					entity.ProductID = productID
				}
			}
		case models.EntityArticleNumber:
			if productID, ok := e.index.LookupArticleNumber(entity.Text); ok {
				entity.ProductID = productID
				entity.Type = models.EntityProduct
			}
		case models.EntityEAN:
			if productID, ok := e.index.LookupEAN(entity.Text); ok {
				entity.ProductID = productID
				entity.Type = models.EntityProduct
			}
		}
		enriched = append(enriched, entity)
	}
	return enriched
}

// resolveProductName maps an extracted product mention to a product ID, by
// exact lowercase match first and token similarity second.
func (e *Extractor) resolveProductName(name string) string {
	nameLower := strings.ToLower(name)
	nameToID := e.index.NameToID()
	if productID, ok := nameToID[nameLower]; ok {
		return productID
	}

	bestID := ""
	bestScore := 0.0
	for candidate, productID := range nameToID {
		score := utils.TokenJaccard(nameLower, candidate)
		if score >= nameMatchThreshold && score > bestScore {
			bestScore = score
			bestID = productID
		}
	}
	return bestID
}
