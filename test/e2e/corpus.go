// Package e2e provides end-to-end tests over a realistic product corpus.
package e2e

import (
	"os"
	"path/filepath"
)

// QueryTestCase is one input with the status and product the engine must
// produce for it.
type QueryTestCase struct {
	Input           string
	ExpectedStatus  string
	ExpectedProduct string
	ExpectedText    string
	Description     string
}

// WriteCorpus writes a six-product lock hardware corpus under dir in the
// integrated-data layout: index files under dir/indices and per-product files
// under dir/products/<id>.
func WriteCorpus(dir string) error {
	files := map[string]string{
		"indices/product_names.json": `{
			"50091812": {"name": "Låshus 310-50"},
			"50080864": {"name": "Cylinder 1301"},
			"50046137": {"name": "Trycke 640"},
			"50112233": {"name": "Monteringsstolpe 4810"},
			"50099001": {"name": "Dörrstängare DC340"},
			"50055510": {"name": "Slutbleck 1487"}
		}`,
		"indices/article_numbers.json": `{
			"50091812": [{"product_id": "50091812"}],
			"50080864": [{"product_id": "50080864"}],
			"50046137": [{"product_id": "50046137"}],
			"50112233": [{"product_id": "50112233"}],
			"50099001": [{"product_id": "50099001"}],
			"50055510": [{"product_id": "50055510"}]
		}`,
		"indices/ean_numbers.json": `{
			"7320890123456": [{"product_id": "50091812"}],
			"7320890123463": [{"product_id": "50080864"}]
		}`,
		"indices/compatibility_map.json": `{
			"50091812": [
				{"relation_type": "fits", "related_product": "Cylinder 1301", "numeric_ids": ["50080864"]},
				{"relation_type": "fits", "related_product": "Trycke 640", "numeric_ids": ["50046137"]},
				{"relation_type": "requires", "related_product": "Monteringsstolpe 4810", "numeric_ids": ["50112233"]}
			],
			"50046137": [
				{"relation_type": "fits", "related_product": "Låshus 310-50", "numeric_ids": ["50091812"]}
			]
		}`,
		"indices/text_search_index.json": `{
			"låshus": ["50091812"],
			"cylinder": ["50080864"],
			"trycke": ["50046137"],
			"monteringsstolpe": ["50112233"],
			"dörrstängare": ["50099001"],
			"slutbleck": ["50055510"],
			"modern": ["50091812", "50080864"],
			"dörr": ["50091812", "50099001", "50055510"]
		}`,
		"indices/technical_specs_index.json": `{
			"50091812": {},
			"50080864": {},
			"50099001": {}
		}`,

		"products/50091812/technical_specs.jsonl": `{"category": "Dimensioner", "name": "Bredd", "raw_value": "50", "unit": "mm", "importance": "high"}
{"category": "Dimensioner", "name": "Höjd", "raw_value": "235", "unit": "mm", "importance": "normal"}
{"category": "Dimensioner", "name": "Dorndjup", "raw_value": "50", "unit": "mm", "importance": "high"}
{"category": "Material", "name": "Material", "raw_value": "Stål, förzinkat"}
`,
		"products/50091812/summary.jsonl": `{"product_id": "50091812", "product_name": "Låshus 310-50", "description": "Ett modernt låshus för innerdörrar med 50 mm dorndjup.", "key_specifications": [{"name": "Dorndjup", "value": "50", "unit": "mm"}], "key_compatibility": [{"relation_type": "fits", "related_product": "Cylinder 1301"}], "identifiers": {"ean": "7320890123456"}}
`,
		"products/50091812/full_info.md": "# Låshus 310-50\n\nFullständig dokumentation för låshuset, inklusive monteringsanvisningar.\n",

		"products/50080864/technical_specs.jsonl": `{"category": "Dimensioner", "name": "Längd", "raw_value": "31", "unit": "mm"}
{"category": "Material", "name": "Material", "raw_value": "Mässing"}
`,
		"products/50080864/summary.jsonl": `{"product_id": "50080864", "product_name": "Cylinder 1301", "description": "En modern låscylinder med sex stift."}
`,

		"products/50046137/summary.jsonl": `{"product_id": "50046137", "product_name": "Trycke 640", "description": "Dörrtrycke i borstat stål."}
`,

		"products/50099001/technical_specs.jsonl": `{"category": "Dimensioner", "name": "Bredd", "raw_value": "285", "unit": "mm"}
{"category": "Kapacitet", "name": "Max dörrvikt", "raw_value": "80", "unit": "kg"}
`,
		"products/50099001/summary.jsonl": `{"product_id": "50099001", "product_name": "Dörrstängare DC340", "description": "Dörrstängare för dörrar upp till 80 kg."}
`,
	}

	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// CommandTestCases covers the structured command surface.
func CommandTestCases() []QueryTestCase {
	return []QueryTestCase{
		{
			Input:           "-t 50091812",
			ExpectedStatus:  "success",
			ExpectedProduct: "50091812",
			ExpectedText:    "Dorndjup",
			Description:     "technical specs command",
		},
		{
			Input:           "-c 50091812",
			ExpectedStatus:  "success",
			ExpectedProduct: "50091812",
			ExpectedText:    "Cylinder 1301",
			Description:     "compatibility command",
		},
		{
			Input:           "-s 50046137",
			ExpectedStatus:  "success",
			ExpectedProduct: "50046137",
			ExpectedText:    "Dörrtrycke",
			Description:     "summary command",
		},
		{
			Input:           "-f 50091812",
			ExpectedStatus:  "success",
			ExpectedProduct: "50091812",
			ExpectedText:    "monteringsanvisningar",
			Description:     "full info command",
		},
		{
			Input:          "-t 99999999",
			ExpectedStatus: "error",
			ExpectedText:   "Ogiltig produkt",
			Description:    "unknown product id",
		},
		{
			Input:          "-c 50099001",
			ExpectedStatus: "error",
			Description:    "product without compatibility data",
		},
	}
}

// NaturalLanguageTestCases covers intent routing for free-text questions.
func NaturalLanguageTestCases() []QueryTestCase {
	return []QueryTestCase{
		{
			Input:           "Vilka tekniska specifikationer har Låshus 310-50?",
			ExpectedStatus:  "success",
			ExpectedProduct: "50091812",
			ExpectedText:    "Dorndjup",
			Description:     "technical question with product name",
		},
		{
			Input:          "hitta liknande låshus, jag letar efter alternativ till cylinder",
			ExpectedStatus: "success",
			ExpectedText:   "Låshus 310-50",
			Description:    "search question",
		},
		{
			Input:          "jag letar efter en dörrstängare till en tung dörr",
			ExpectedStatus: "success",
			ExpectedText:   "Dörrstängare DC340",
			Description:    "search question with typo free terms",
		},
	}
}
