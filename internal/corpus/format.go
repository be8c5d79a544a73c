package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// relationDisplay maps relation types to their Swedish display headings.
var relationDisplay = map[string]string{
	"direct":         "Kompatibel med",
	"fits":           "Passar till",
	"requires":       "Kräver",
	"recommended":    "Rekommenderas med",
	"designed_for":   "Designad för",
	"accessory":      "Tillbehör till",
	"replacement":    "Ersätter",
	"replaced_by":    "Ersätts av",
	"not_compatible": "Ej kompatibel med",
}

// RelationDisplayName returns the Swedish heading for a relation type.
// Unknown types are title-cased with underscores replaced by spaces.
func RelationDisplayName(relationType string) string {
	if display, ok := relationDisplay[relationType]; ok {
		return display
	}
	words := strings.Split(strings.ReplaceAll(relationType, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FormatSpecs renders specifications grouped by category as markdown.
func FormatSpecs(productName string, specs []SpecRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Tekniska specifikationer för %s\n", productName)

	grouped := make(map[string][]SpecRecord)
	var order []string
	for _, spec := range specs {
		category := spec.Category
		if category == "" {
			category = "Övrigt"
		}
		if _, ok := grouped[category]; !ok {
			order = append(order, category)
		}
		grouped[category] = append(grouped[category], spec)
	}

	for _, category := range order {
		fmt.Fprintf(&b, "\n### %s\n", category)
		specs := grouped[category]
		sort.SliceStable(specs, func(i, j int) bool {
			return importanceRank(specs[i].Importance) < importanceRank(specs[j].Importance)
		})
		for _, spec := range specs {
			value := spec.RawValue
			if spec.Unit != "" {
				value = value + " " + spec.Unit
			}
			fmt.Fprintf(&b, "- **%s:** %s\n", spec.Name, value)
		}
	}
	return b.String()
}

// FormatCompatibility renders relations grouped by relation type as markdown.
// resolveName maps each relation to its display name.
func FormatCompatibility(productName string, relations []Relation, resolveName func(Relation) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Kompatibilitetsinformation för %s\n", productName)

	grouped := make(map[string][]Relation)
	var order []string
	for _, rel := range relations {
		if _, ok := grouped[rel.RelationType]; !ok {
			order = append(order, rel.RelationType)
		}
		grouped[rel.RelationType] = append(grouped[rel.RelationType], rel)
	}

	for _, relationType := range order {
		fmt.Fprintf(&b, "\n### %s\n", RelationDisplayName(relationType))
		rels := grouped[relationType]
		sort.SliceStable(rels, func(i, j int) bool {
			return rels[i].Confidence > rels[j].Confidence
		})
		for _, rel := range rels {
			name := resolveName(rel)
			if name == "" {
				continue
			}
			if rel.Context != "" {
				name = fmt.Sprintf("%s (%s)", name, rel.Context)
			}
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	return b.String()
}

// FormatSummary renders a product summary as markdown.
func FormatSummary(s *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", s.ProductName)
	if s.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", s.Description)
	}

	if len(s.KeySpecifications) > 0 {
		b.WriteString("\n### Viktiga egenskaper\n")
		for _, spec := range s.KeySpecifications {
			value := spec.Value
			if spec.Unit != "" {
				value = value + " " + spec.Unit
			}
			fmt.Fprintf(&b, "- **%s:** %s\n", spec.Name, value)
		}
	}

	if len(s.KeyCompatibility) > 0 {
		b.WriteString("\n### Kompatibilitet\n")
		for _, rel := range s.KeyCompatibility {
			fmt.Fprintf(&b, "- %s: %s\n", RelationDisplayName(rel.RelationType), rel.RelatedProduct)
		}
	}

	if len(s.Identifiers) > 0 {
		keys := make([]string, 0, len(s.Identifiers))
		for k := range s.Identifiers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n### Identifierare\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, s.Identifiers[k])
		}
	}
	return b.String()
}

// FormatSearchResults renders ranked matches as a numbered markdown list.
func FormatSearchResults(query string, matches []Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Sökresultat för %q\n\n", query)
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. **%s** (artikelnr: %s)\n", i+1, m.Name, m.ProductID)
	}
	return b.String()
}
