package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
)

// Result is the common outcome part shared by all data accessors.
type Result struct {
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	FormattedText string `json:"formatted_text,omitempty"`
}

// Outcome makes Result satisfy the Outcome interface from any embedding type.
func (r Result) Outcome() Result { return r }

// Outcome is implemented by all typed accessor results, letting response
// generation dispatch on the concrete type while reading the shared status.
type Outcome interface {
	Outcome() Result
}

// SpecsResult carries technical specifications for one product.
type SpecsResult struct {
	Result
	ProductID string       `json:"product_id"`
	Specs     []SpecRecord `json:"specs,omitempty"`
}

// CompatResult carries compatibility relations for one product.
type CompatResult struct {
	Result
	ProductID string     `json:"product_id"`
	Relations []Relation `json:"relations,omitempty"`
}

// SummaryResult carries the product summary record.
type SummaryResult struct {
	Result
	ProductID string   `json:"product_id"`
	Summary   *Summary `json:"summary,omitempty"`
}

// FullInfoResult carries the full markdown document for one product.
type FullInfoResult struct {
	Result
	ProductID string `json:"product_id"`
	Markdown  string `json:"markdown,omitempty"`
}

// Match is one search hit.
type Match struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
}

// SearchResult carries ranked product matches for a free-text query.
type SearchResult struct {
	Result
	Query   string  `json:"query"`
	Matches []Match `json:"matches,omitempty"`
}

// RelatedProduct is one entry returned by FindRelatedProducts.
type RelatedProduct struct {
	ProductID    string `json:"product_id,omitempty"`
	Name         string `json:"name"`
	RelationType string `json:"relation_type"`
}

// StoreStats summarizes the loaded corpus.
type StoreStats struct {
	Products             int `json:"products"`
	ArticleNumbers       int `json:"article_numbers"`
	EANs                 int `json:"ean_numbers"`
	TextIndexTerms       int `json:"text_index_terms"`
	CompatibilityEntries int `json:"compatibility_entries"`
	SpecProducts         int `json:"spec_products"`
}

// Store serves product data from the integrated-data directory. All index
// files are loaded once at startup; per-product files are read on demand.
// The store is read-only after construction and safe for concurrent use.
type Store struct {
	cfg    *config.DataConfig
	logger *zap.Logger

	articleIndex map[string][]IndexRef
	eanIndex     map[string][]IndexRef
	compatMap    map[string][]Relation
	textIndex    map[string][]string
	productNames map[string]NameEntry
	specsIndex   map[string]json.RawMessage

	nameToID map[string]string
	spell    *corrector
}

// NewStore loads all index files from cfg's indices directory. Missing index
// files are logged and treated as empty; an unreadable data root is an error.
func NewStore(cfg *config.DataConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(cfg.Dir); err != nil {
		return nil, fmt.Errorf("data directory %s: %w", cfg.Dir, err)
	}

	s := &Store{
		cfg:          cfg,
		logger:       logger,
		articleIndex: make(map[string][]IndexRef),
		eanIndex:     make(map[string][]IndexRef),
		compatMap:    make(map[string][]Relation),
		textIndex:    make(map[string][]string),
		productNames: make(map[string]NameEntry),
		specsIndex:   make(map[string]json.RawMessage),
		nameToID:     make(map[string]string),
	}

	indices := cfg.IndicesDir()
	s.loadIndex(filepath.Join(indices, "article_numbers.json"), &s.articleIndex)
	s.loadIndex(filepath.Join(indices, "ean_numbers.json"), &s.eanIndex)
	s.loadIndex(filepath.Join(indices, "compatibility_map.json"), &s.compatMap)
	s.loadIndex(filepath.Join(indices, "text_search_index.json"), &s.textIndex)
	s.loadIndex(filepath.Join(indices, "product_names.json"), &s.productNames)
	s.loadIndex(filepath.Join(indices, "technical_specs_index.json"), &s.specsIndex)

	for id, entry := range s.productNames {
		if entry.Name != "" {
			s.nameToID[strings.ToLower(entry.Name)] = id
		}
	}
	s.spell = newCorrector(s.textIndex, s.nameToID)

	logger.Info("corpus loaded",
		zap.Int("products", len(s.productNames)),
		zap.Int("article_numbers", len(s.articleIndex)),
		zap.Int("ean_numbers", len(s.eanIndex)),
		zap.Int("text_terms", len(s.textIndex)))
	return s, nil
}

func (s *Store) loadIndex(path string, v any) {
	if err := readJSON(path, v); err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("index file missing", zap.String("path", path))
			return
		}
		s.logger.Warn("index file unreadable", zap.String("path", path), zap.Error(err))
	}
}

func (s *Store) productDir(productID string) string {
	return filepath.Join(s.cfg.ProductsDir(), productID)
}

// ValidateProductID reports whether the product exists in the corpus.
func (s *Store) ValidateProductID(productID string) bool {
	if productID == "" {
		return false
	}
	if _, ok := s.productNames[productID]; ok {
		return true
	}
	info, err := os.Stat(s.productDir(productID))
	return err == nil && info.IsDir()
}

// ProductName returns the display name for a product, or the ID itself when
// the name is unknown.
func (s *Store) ProductName(productID string) string {
	if entry, ok := s.productNames[productID]; ok && entry.Name != "" {
		return entry.Name
	}
	return productID
}

// NameToID returns the lowercase-name to product-ID mapping. The returned map
// is shared; callers must not modify it.
func (s *Store) NameToID() map[string]string {
	return s.nameToID
}

// LookupArticleNumber resolves an article number to a product ID.
func (s *Store) LookupArticleNumber(article string) (string, bool) {
	refs, ok := s.articleIndex[article]
	if !ok || len(refs) == 0 {
		return "", false
	}
	return refs[0].ProductID, true
}

// LookupEAN resolves an EAN code to a product ID.
func (s *Store) LookupEAN(ean string) (string, bool) {
	refs, ok := s.eanIndex[ean]
	if !ok || len(refs) == 0 {
		return "", false
	}
	return refs[0].ProductID, true
}

// GetTechnicalSpecs returns the specifications for a product, formatted as
// markdown grouped by category. A non-empty filter narrows the result: a
// category whose name contains a filter token is kept whole, otherwise
// individual specs match on name or value. When nothing matches, the full
// listing is returned.
func (s *Store) GetTechnicalSpecs(productID, filter string) *SpecsResult {
	res := &SpecsResult{ProductID: productID}
	if !s.ValidateProductID(productID) {
		res.Status = "error"
		res.Message = fmt.Sprintf("Okänt produkt-ID: %s", productID)
		return res
	}

	specs, err := readJSONL[SpecRecord](filepath.Join(s.productDir(productID), "technical_specs.jsonl"))
	if err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to read specs", zap.String("product_id", productID), zap.Error(err))
	}
	if len(specs) == 0 {
		res.Status = "error"
		res.Message = "Ingen teknisk information tillgänglig."
		return res
	}
	specs = filterSpecs(specs, filter)

	res.Status = "success"
	res.Specs = specs
	res.FormattedText = FormatSpecs(s.ProductName(productID), specs)
	return res
}

// containsAnyTerm reports whether haystack contains any of the lowercase
// terms as a substring.
func containsAnyTerm(haystack string, terms []string) bool {
	haystack = strings.ToLower(haystack)
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

// filterSpecs applies the free-text command parameters as a filter. A
// category match keeps its whole group; otherwise specs match individually
// on name or value. When no term matches anything, all specs are kept.
func filterSpecs(specs []SpecRecord, filter string) []SpecRecord {
	terms := strings.Fields(strings.ToLower(filter))
	if len(terms) == 0 {
		return specs
	}

	matchedCategories := make(map[string]bool)
	for _, spec := range specs {
		if containsAnyTerm(spec.Category, terms) {
			matchedCategories[spec.Category] = true
		}
	}

	var filtered []SpecRecord
	for _, spec := range specs {
		if matchedCategories[spec.Category] ||
			containsAnyTerm(spec.Name, terms) || containsAnyTerm(spec.RawValue, terms) {
			filtered = append(filtered, spec)
		}
	}
	if len(filtered) == 0 {
		return specs
	}
	return filtered
}

// GetCompatibility returns the compatibility relations for a product. The
// per-product file is used first and the global compatibility map is the
// fallback. A non-empty filter narrows by relation type or related product
// name, falling back to everything when nothing matches.
func (s *Store) GetCompatibility(productID, filter string) *CompatResult {
	res := &CompatResult{ProductID: productID}
	if !s.ValidateProductID(productID) {
		res.Status = "error"
		res.Message = fmt.Sprintf("Okänt produkt-ID: %s", productID)
		return res
	}

	relations, err := readJSONL[Relation](filepath.Join(s.productDir(productID), "compatibility.jsonl"))
	if err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to read compatibility", zap.String("product_id", productID), zap.Error(err))
	}
	if len(relations) == 0 {
		relations = s.compatMap[productID]
	}
	if len(relations) == 0 {
		res.Status = "error"
		res.Message = "Ingen kompatibilitetsinformation tillgänglig."
		return res
	}
	relations = filterRelations(relations, filter)

	res.Status = "success"
	res.Relations = relations
	res.FormattedText = FormatCompatibility(s.ProductName(productID), relations, s.resolveRelationName)
	return res
}

// filterRelations narrows relations by the command parameters: a term that
// matches the relation type keeps the whole type, otherwise relations match
// on related product name. When no term matches anything, all are kept.
func filterRelations(relations []Relation, filter string) []Relation {
	terms := strings.Fields(strings.ToLower(filter))
	if len(terms) == 0 {
		return relations
	}

	matchedTypes := make(map[string]bool)
	for _, rel := range relations {
		if containsAnyTerm(rel.RelationType, terms) {
			matchedTypes[rel.RelationType] = true
		}
	}

	var filtered []Relation
	for _, rel := range relations {
		if matchedTypes[rel.RelationType] || containsAnyTerm(rel.RelatedProduct, terms) {
			filtered = append(filtered, rel)
		}
	}
	if len(filtered) == 0 {
		return relations
	}
	return filtered
}

// GetSummary returns the precomputed summary record for a product.
func (s *Store) GetSummary(productID string) *SummaryResult {
	res := &SummaryResult{ProductID: productID}
	if !s.ValidateProductID(productID) {
		res.Status = "error"
		res.Message = fmt.Sprintf("Okänt produkt-ID: %s", productID)
		return res
	}

	summaries, err := readJSONL[Summary](filepath.Join(s.productDir(productID), "summary.jsonl"))
	if err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to read summary", zap.String("product_id", productID), zap.Error(err))
	}
	if len(summaries) == 0 {
		synthesized := s.synthesizeSummary(productID)
		if synthesized == nil {
			res.Status = "error"
			res.Message = "Ingen sammanfattning tillgänglig."
			return res
		}
		summaries = []Summary{*synthesized}
	}

	summary := summaries[0]
	if summary.ProductName == "" {
		summary.ProductName = s.ProductName(productID)
	}
	res.Status = "success"
	res.Summary = &summary
	res.FormattedText = FormatSummary(&summary)
	return res
}

// descriptionCategories are the spec categories whose values read as prose
// rather than measurements.
var descriptionCategories = map[string]bool{
	"general":     true,
	"allmänt":     true,
	"beskrivning": true,
}

// synthesizeSummary builds a summary on the fly from the product's
// specifications, compatibility data and article-info identifiers when no
// precomputed summary exists. Returns nil when there is nothing to build from.
func (s *Store) synthesizeSummary(productID string) *Summary {
	specs, _ := readJSONL[SpecRecord](filepath.Join(s.productDir(productID), "technical_specs.jsonl"))
	relations := s.compatMap[productID]
	identifiers, _ := readJSONL[IdentifierRecord](filepath.Join(s.productDir(productID), "article_info.jsonl"))
	if len(specs) == 0 && len(relations) == 0 && len(identifiers) == 0 {
		return nil
	}

	summary := &Summary{
		ProductID:   productID,
		ProductName: s.ProductName(productID),
		GeneratedAt: time.Now().Format(time.RFC3339),
	}

	var descParts []string
	var keyCandidates []SpecRecord
	for _, spec := range specs {
		if descriptionCategories[strings.ToLower(spec.Category)] {
			descParts = append(descParts, spec.RawValue)
			continue
		}
		keyCandidates = append(keyCandidates, spec)
	}
	summary.Description = strings.Join(descParts, " ")

	sort.SliceStable(keyCandidates, func(i, j int) bool {
		ri, rj := importanceRank(keyCandidates[i].Importance), importanceRank(keyCandidates[j].Importance)
		if ri != rj {
			return ri < rj
		}
		return keyCandidates[i].Category < keyCandidates[j].Category
	})
	for _, spec := range keyCandidates {
		if len(summary.KeySpecifications) == 5 {
			break
		}
		summary.KeySpecifications = append(summary.KeySpecifications, KeySpec{
			Name:  spec.Name,
			Value: spec.RawValue,
			Unit:  spec.Unit,
		})
	}

	// Relations with resolved product IDs first, then by confidence.
	sorted := make([]Relation, len(relations))
	copy(sorted, relations)
	sort.SliceStable(sorted, func(i, j int) bool {
		hi, hj := len(sorted[i].NumericIDs) > 0, len(sorted[j].NumericIDs) > 0
		if hi != hj {
			return hi
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})
	for _, rel := range sorted {
		if len(summary.KeyCompatibility) == 5 {
			break
		}
		summary.KeyCompatibility = append(summary.KeyCompatibility, KeyRelation{
			RelationType:   rel.RelationType,
			RelatedProduct: s.resolveRelationName(rel),
		})
	}

	if len(identifiers) > 0 {
		summary.Identifiers = make(map[string]string)
		for _, ident := range identifiers {
			if ident.Type == "" || ident.Value == "" {
				continue
			}
			if existing, ok := summary.Identifiers[ident.Type]; ok {
				summary.Identifiers[ident.Type] = existing + ", " + ident.Value
			} else {
				summary.Identifiers[ident.Type] = ident.Value
			}
		}
	}
	return summary
}

// GetFullInfo returns the full markdown document for a product.
func (s *Store) GetFullInfo(productID string) *FullInfoResult {
	res := &FullInfoResult{ProductID: productID}
	if !s.ValidateProductID(productID) {
		res.Status = "error"
		res.Message = fmt.Sprintf("Okänt produkt-ID: %s", productID)
		return res
	}

	data, err := os.ReadFile(filepath.Join(s.productDir(productID), "full_info.md"))
	if err != nil {
		res.Status = "error"
		res.Message = "Ingen fullständig information tillgänglig."
		return res
	}

	res.Status = "success"
	res.Markdown = string(data)
	res.FormattedText = string(data)
	return res
}

// FindRelatedProducts returns products related to the given one, resolved
// from the compatibility map. A non-empty types list keeps only relations of
// those types.
func (s *Store) FindRelatedProducts(productID string, types []string) []RelatedProduct {
	relations := s.compatMap[productID]
	if len(relations) == 0 {
		if per, err := readJSONL[Relation](filepath.Join(s.productDir(productID), "compatibility.jsonl")); err == nil {
			relations = per
		}
	}

	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	var related []RelatedProduct
	seen := make(map[string]bool)
	for _, rel := range relations {
		if len(wanted) > 0 && !wanted[rel.RelationType] {
			continue
		}
		rp := RelatedProduct{
			Name:         rel.RelatedProduct,
			RelationType: rel.RelationType,
		}
		if len(rel.NumericIDs) > 0 {
			rp.ProductID = rel.NumericIDs[0]
		} else if id, ok := s.nameToID[strings.ToLower(rel.RelatedProduct)]; ok {
			rp.ProductID = id
		}
		if rp.ProductID != "" && rp.Name == "" {
			rp.Name = s.ProductName(rp.ProductID)
		}
		key := rp.ProductID + "|" + rp.Name
		if rp.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		related = append(related, rp)
	}
	return related
}

// resolveRelationName maps a related-product reference to a display name,
// preferring the product-name index when the relation carries a product ID.
func (s *Store) resolveRelationName(rel Relation) string {
	if len(rel.NumericIDs) > 0 {
		if entry, ok := s.productNames[rel.NumericIDs[0]]; ok && entry.Name != "" {
			return entry.Name
		}
	}
	return rel.RelatedProduct
}

// Stats returns corpus-level counters.
func (s *Store) Stats() StoreStats {
	return StoreStats{
		Products:             len(s.productNames),
		ArticleNumbers:       len(s.articleIndex),
		EANs:                 len(s.eanIndex),
		TextIndexTerms:       len(s.textIndex),
		CompatibilityEntries: len(s.compatMap),
		SpecProducts:         len(s.specsIndex),
	}
}
