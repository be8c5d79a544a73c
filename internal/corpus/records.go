// Package corpus loads and queries the precomputed product data:
// per-product JSONL files plus the global JSON index files.
package corpus

import (
	"bufio"
	"encoding/json"
	"os"
)

// SpecRecord is one technical specification line from technical_specs.jsonl.
// Importance is a label, not a number: "high", "medium", "normal" or "low".
type SpecRecord struct {
	Category   string `json:"category"`
	Name       string `json:"name"`
	RawValue   string `json:"raw_value"`
	Unit       string `json:"unit,omitempty"`
	Importance string `json:"importance,omitempty"`
}

// importanceRank orders importance labels for sorting: high before medium
// before everything else.
func importanceRank(importance string) int {
	switch importance {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}

// Relation is one compatibility relation from compatibility.jsonl or the
// global compatibility map.
type Relation struct {
	RelationType   string   `json:"relation_type"`
	RelatedProduct string   `json:"related_product"`
	NumericIDs     []string `json:"numeric_ids,omitempty"`
	Context        string   `json:"context,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
}

// KeySpec is a highlighted specification inside a product summary.
type KeySpec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// KeyRelation is a highlighted relation inside a product summary.
type KeyRelation struct {
	RelationType   string `json:"relation_type"`
	RelatedProduct string `json:"related_product"`
}

// Summary is the single record in a product's summary.jsonl.
type Summary struct {
	ProductID         string            `json:"product_id"`
	ProductName       string            `json:"product_name"`
	Description       string            `json:"description"`
	KeySpecifications []KeySpec         `json:"key_specifications,omitempty"`
	KeyCompatibility  []KeyRelation     `json:"key_compatibility,omitempty"`
	Identifiers       map[string]string `json:"identifiers,omitempty"`
	GeneratedAt       string            `json:"generated_at,omitempty"`
}

// IdentifierRecord is one line in article_info.jsonl: an identifier of some
// type (article number, EAN, RSK and so on) attached to the product.
type IdentifierRecord struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IndexRef is one entry in the article-number and EAN index files.
type IndexRef struct {
	ProductID string `json:"product_id"`
}

// NameEntry is one entry in product_names.json.
type NameEntry struct {
	Name string `json:"name"`
}

// readJSONL decodes one record per line from path. Lines that fail to parse
// are skipped so one bad record does not poison the file.
func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// readJSON decodes a whole JSON file into v. A missing file leaves v untouched
// and returns os.ErrNotExist via the underlying open.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
