package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
	"github.com/skarvik/produktbot/internal/corpus"
	"github.com/skarvik/produktbot/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// newTestEngine builds an engine over a small on-disk corpus. minConfidence
// replaces the default threshold so tests can steer between the answer and
// clarification paths.
func newTestEngine(t *testing.T, minConfidence float64) *Engine {
	t.Helper()
	dir := t.TempDir()
	indices := filepath.Join(dir, "indices")

	writeFile(t, filepath.Join(indices, "product_names.json"), `{
		"50091812": {"name": "Låshus 310-50"},
		"50080864": {"name": "Cylinder 1301"}
	}`)
	writeFile(t, filepath.Join(indices, "article_numbers.json"), `{
		"50091812": [{"product_id": "50091812"}],
		"50080864": [{"product_id": "50080864"}]
	}`)
	writeFile(t, filepath.Join(indices, "ean_numbers.json"), `{}`)
	writeFile(t, filepath.Join(indices, "compatibility_map.json"), `{
		"50091812": [
			{"relation_type": "fits", "related_product": "Cylinder 1301", "numeric_ids": ["50080864"]}
		]
	}`)
	writeFile(t, filepath.Join(indices, "text_search_index.json"), `{
		"låshus": ["50091812"],
		"cylinder": ["50080864"]
	}`)
	writeFile(t, filepath.Join(indices, "technical_specs_index.json"), `{
		"50091812": {}
	}`)

	p1 := filepath.Join(dir, "products", "50091812")
	writeFile(t, filepath.Join(p1, "technical_specs.jsonl"),
		`{"category": "Dimensioner", "name": "Bredd", "raw_value": "50", "unit": "mm"}
{"category": "Material", "name": "Material", "raw_value": "Stål"}
`)
	writeFile(t, filepath.Join(p1, "summary.jsonl"),
		`{"product_id": "50091812", "product_name": "Låshus 310-50", "description": "Ett låshus för anslutande trycken."}
`)

	cfg := config.Default(dir)
	cfg.Engine.MinConfidence = minConfidence

	store, err := corpus.NewStore(&cfg.Data, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return New(context.Background(), cfg, store, nil, nil, zap.NewNop())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  *Command
	}{
		{"-t 50091812", &Command{Kind: "t", ProductID: "50091812"}},
		{"  -c 50091812  ", &Command{Kind: "c", ProductID: "50091812"}},
		{"-s 50091812 extra params", &Command{Kind: "s", ProductID: "50091812", Params: "extra params"}},
		{"-f 50091812", &Command{Kind: "f", ProductID: "50091812"}},
		{"vad är detta?", nil},
		{"-x 50091812", nil},
		{"-t", nil},
	}
	for _, tt := range tests {
		got, ok := ParseCommand(tt.input)
		if tt.want == nil {
			if ok {
				t.Errorf("ParseCommand(%q) = %+v, want no match", tt.input, got)
			}
			continue
		}
		if !ok || *got != *tt.want {
			t.Errorf("ParseCommand(%q) = %+v, %v, want %+v", tt.input, got, ok, tt.want)
		}
	}
}

func TestCommandTechnicalSpecs(t *testing.T) {
	e := newTestEngine(t, 0.6)
	session := models.NewSessionContext()

	resp := e.ProcessInput(context.Background(), "-t 50091812", session)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("status = %q, text = %q", resp.Status, resp.Text)
	}
	if !strings.Contains(resp.Text, "Dimensioner") || !strings.Contains(resp.Text, "Bredd") {
		t.Errorf("unexpected text:\n%s", resp.Text)
	}
	if resp.ProductID != "50091812" {
		t.Errorf("ProductID = %q", resp.ProductID)
	}
	if session.ActiveProductID != "50091812" {
		t.Errorf("ActiveProductID = %q", session.ActiveProductID)
	}
}

func TestExecuteCommandDirect(t *testing.T) {
	e := newTestEngine(t, 0.6)
	session := models.NewSessionContext()

	resp := e.ExecuteCommand("t", "50091812", "", session)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("status = %q, text = %q", resp.Status, resp.Text)
	}
	if resp.Type != "command" {
		t.Errorf("type = %q", resp.Type)
	}

	stats := e.Stats()
	if stats.TotalQueries != 1 || stats.CommandQueries != 1 {
		t.Errorf("TotalQueries = %d, CommandQueries = %d, want 1 each", stats.TotalQueries, stats.CommandQueries)
	}
	if len(session.QueryHistory) != 1 || session.QueryHistory[0] != "-t 50091812" {
		t.Errorf("QueryHistory = %v", session.QueryHistory)
	}
}

func TestCommandParamsFilterSpecs(t *testing.T) {
	e := newTestEngine(t, 0.6)

	resp := e.ProcessInput(context.Background(), "-t 50091812 material", nil)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("status = %q, text = %q", resp.Status, resp.Text)
	}
	if !strings.Contains(resp.Text, "Stål") {
		t.Errorf("filtered spec missing:\n%s", resp.Text)
	}
	if strings.Contains(resp.Text, "Bredd") {
		t.Errorf("filter should drop unrelated specs:\n%s", resp.Text)
	}
}

func TestNaturalLanguageMissingDataPropagatesError(t *testing.T) {
	e := newTestEngine(t, 0.05)

	// Cylinder 1301 exists but has no spec file on disk.
	resp := e.ProcessInput(context.Background(), "Vilka tekniska specifikationer har Cylinder 1301?", nil)
	if resp.Status != models.StatusError {
		t.Fatalf("status = %q, want error", resp.Status)
	}
}

func TestCommandInvalidProduct(t *testing.T) {
	e := newTestEngine(t, 0.6)

	resp := e.ProcessInput(context.Background(), "-t 99999999", nil)
	if resp.Status != models.StatusError {
		t.Fatalf("status = %q", resp.Status)
	}
	if !strings.Contains(resp.Text, "Ogiltig produkt: 99999999") {
		t.Errorf("unexpected text: %q", resp.Text)
	}
}

func TestCommandResponseCache(t *testing.T) {
	e := newTestEngine(t, 0.6)

	first := e.ProcessInput(context.Background(), "-t 50091812", nil)
	if first.Cached {
		t.Error("first response should not be cached")
	}
	second := e.ProcessInput(context.Background(), "-t 50091812", nil)
	if !second.Cached {
		t.Error("second response should come from cache")
	}
	if second.Text != first.Text {
		t.Error("cached response text differs")
	}
}

func TestNaturalLanguageTechnicalQuery(t *testing.T) {
	e := newTestEngine(t, 0.05)
	session := models.NewSessionContext()

	resp := e.ProcessInput(context.Background(), "Vilka tekniska specifikationer har Låshus 310-50?", session)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("status = %q, text = %q", resp.Status, resp.Text)
	}
	if resp.Intent != models.IntentTechnical {
		t.Errorf("intent = %q", resp.Intent)
	}
	if resp.ProductID != "50091812" {
		t.Errorf("ProductID = %q", resp.ProductID)
	}
	if !strings.Contains(resp.Text, "Bredd") {
		t.Errorf("unexpected text:\n%s", resp.Text)
	}
	if session.ActiveProductID != "50091812" {
		t.Errorf("ActiveProductID = %q", session.ActiveProductID)
	}
	if session.PreviousIntent != models.IntentTechnical {
		t.Errorf("PreviousIntent = %q", session.PreviousIntent)
	}
}

func TestNaturalLanguageFollowUp(t *testing.T) {
	e := newTestEngine(t, 0.05)
	session := models.NewSessionContext()

	e.ProcessInput(context.Background(), "Vilka tekniska specifikationer har Låshus 310-50?", session)
	resp := e.ProcessInput(context.Background(), "Vilka mått har den?", session)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("status = %q, text = %q", resp.Status, resp.Text)
	}
	if resp.Intent != models.IntentTechnical {
		t.Errorf("intent = %q", resp.Intent)
	}
	// The anaphor resolves against the active product.
	if resp.ProductID != "50091812" {
		t.Errorf("ProductID = %q", resp.ProductID)
	}
}

func TestNaturalLanguageSearch(t *testing.T) {
	e := newTestEngine(t, 0.05)

	resp := e.ProcessInput(context.Background(), "hitta liknande låshus, jag letar efter alternativ till cylinder", nil)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("status = %q, text = %q", resp.Status, resp.Text)
	}
	if resp.Intent != models.IntentSearch {
		t.Errorf("intent = %q", resp.Intent)
	}
	if !strings.Contains(resp.Text, "Låshus 310-50") {
		t.Errorf("missing search hit:\n%s", resp.Text)
	}
}

func TestClarificationIntentMenu(t *testing.T) {
	e := newTestEngine(t, 0.6)

	resp := e.ProcessInput(context.Background(), "hej", nil)
	if resp.Status != models.StatusNeedsClarification {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Clarification == nil || resp.Clarification.Kind != "intent_selection" {
		t.Fatalf("clarification = %+v", resp.Clarification)
	}
	if len(resp.Clarification.Options) != 4 {
		t.Errorf("options = %d, want 4", len(resp.Clarification.Options))
	}
}

func TestClarificationProductSuggestions(t *testing.T) {
	e := newTestEngine(t, 0.6)

	resp := e.ProcessInput(context.Background(), "låshus", nil)
	if resp.Status != models.StatusNeedsClarification {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Clarification == nil || resp.Clarification.Kind != "product_selection" {
		t.Fatalf("clarification = %+v", resp.Clarification)
	}
	found := false
	for _, opt := range resp.Clarification.Options {
		if opt.ID == "50091812" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected suggestion for 50091812, got %+v", resp.Clarification.Options)
	}
}

func TestStatsCounters(t *testing.T) {
	e := newTestEngine(t, 0.6)
	session := models.NewSessionContext()

	e.ProcessInput(context.Background(), "-t 50091812", session)
	e.ProcessInput(context.Background(), "-t 99999999", session)
	e.ProcessInput(context.Background(), "hej", session)

	stats := e.Stats()
	if stats.TotalQueries != 3 {
		t.Errorf("TotalQueries = %d", stats.TotalQueries)
	}
	if stats.CommandQueries != 2 {
		t.Errorf("CommandQueries = %d", stats.CommandQueries)
	}
	if stats.NaturalLanguageQueries != 1 {
		t.Errorf("NaturalLanguageQueries = %d", stats.NaturalLanguageQueries)
	}
	if stats.SuccessfulQueries != 1 {
		t.Errorf("SuccessfulQueries = %d", stats.SuccessfulQueries)
	}
	if stats.AmbiguousQueries != 1 {
		t.Errorf("AmbiguousQueries = %d", stats.AmbiguousQueries)
	}
	if stats.Failures != 1 {
		t.Errorf("Failures = %d", stats.Failures)
	}
	if stats.SuccessRate == 0 {
		t.Error("SuccessRate should be derived")
	}
	if stats.Corpus.Products != 2 {
		t.Errorf("Corpus.Products = %d", stats.Corpus.Products)
	}
}

func TestProcessInputRecordsHistory(t *testing.T) {
	e := newTestEngine(t, 0.6)
	session := models.NewSessionContext()

	e.ProcessInput(context.Background(), "-t 50091812", session)
	e.ProcessInput(context.Background(), "hej", session)
	if len(session.QueryHistory) != 2 {
		t.Errorf("QueryHistory = %v", session.QueryHistory)
	}
}
