package intent

import (
	"context"
	"testing"

	"github.com/skarvik/produktbot/internal/embedding"
	"github.com/skarvik/produktbot/internal/models"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return NewAnalyzer(context.Background(), embedding.NewNullEmbedder(), nil)
}

func TestAnalyzeTechnicalQuery(t *testing.T) {
	a := newTestAnalyzer(t)

	entities := []models.Entity{
		{Type: models.EntityDimension, Text: "50 mm", Start: 10, End: 15},
	}
	result := a.Analyze(context.Background(), "Vilka mått och dimensioner har produkten?", entities, nil)

	if result.Primary != models.IntentTechnical {
		t.Errorf("primary = %s, want technical (scores %v)", result.Primary, result.Intents)
	}
	if result.Intents[0].Intent != result.Primary {
		t.Errorf("sorted list head %s disagrees with primary %s", result.Intents[0].Intent, result.Primary)
	}
}

func TestAnalyzeCompatibilityQuery(t *testing.T) {
	a := newTestAnalyzer(t)

	entities := []models.Entity{
		{Type: models.EntityProduct, Text: "Låshus 310-50", ProductID: "50091812"},
	}
	result := a.Analyze(context.Background(), "Passar den tillsammans med trycket, är den kompatibel?", entities, nil)

	if result.Primary != models.IntentCompatibility {
		t.Errorf("primary = %s, want compatibility (scores %v)", result.Primary, result.Intents)
	}
}

func TestAnalyzeSearchQuery(t *testing.T) {
	a := newTestAnalyzer(t)

	result := a.Analyze(context.Background(), "Jag letar efter ett alternativ till denna", nil, nil)
	if result.Primary != models.IntentSearch {
		t.Errorf("primary = %s, want search (scores %v)", result.Primary, result.Intents)
	}
}

func TestAnalyzeDefaultsToSummary(t *testing.T) {
	a := newTestAnalyzer(t)

	result := a.Analyze(context.Background(), "okej", nil, nil)
	if result.Primary != models.IntentSummary {
		t.Errorf("primary = %s, want summary", result.Primary)
	}
	if result.Confidence <= 0 {
		t.Errorf("confidence = %v, want > 0", result.Confidence)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestAnalyzer(t)

	first := a.Analyze(context.Background(), "Berätta om produkten", nil, nil)
	for i := 0; i < 10; i++ {
		again := a.Analyze(context.Background(), "Berätta om produkten", nil, nil)
		if again.Primary != first.Primary || again.Confidence != first.Confidence {
			t.Fatalf("run %d differs: %s/%v vs %s/%v", i, again.Primary, again.Confidence, first.Primary, first.Confidence)
		}
		for j := range first.Intents {
			if again.Intents[j] != first.Intents[j] {
				t.Fatalf("ranking not deterministic at %d: %v vs %v", j, again.Intents, first.Intents)
			}
		}
	}
}

func TestContextCarriesPreviousIntent(t *testing.T) {
	a := newTestAnalyzer(t)
	sessionCtx := &models.SessionContext{
		QueryHistory:   []string{"Vilka mått har den?"},
		PreviousIntent: models.IntentTechnical,
	}

	scores := a.contextScores(sessionCtx)
	if scores[models.IntentTechnical] != 0.3 {
		t.Errorf("technical context score = %v, want 0.3", scores[models.IntentTechnical])
	}

	sessionCtx = &models.SessionContext{
		QueryHistory:    []string{"sök låshus"},
		PreviousIntent:  models.IntentSearch,
		ActiveProductID: "50091812",
	}
	scores = a.contextScores(sessionCtx)
	if scores[models.IntentSummary] != 0.4 {
		t.Errorf("summary context score = %v, want 0.4", scores[models.IntentSummary])
	}
}

func TestEntityScoresMultipleProducts(t *testing.T) {
	a := newTestAnalyzer(t)
	entities := []models.Entity{
		{Type: models.EntityProduct, Text: "Låshus 310-50"},
		{Type: models.EntityProduct, Text: "Cylinder 1301"},
		{Type: models.EntityCompatibility, Text: "passar till"},
	}

	scores := a.entityScores(entities)
	if scores[models.IntentSearch] != 0.5 {
		t.Errorf("search = %v, want 0.5", scores[models.IntentSearch])
	}
	// Compatibility term plus two products stacks both bonuses.
	if got := scores[models.IntentCompatibility]; got < 1.09 || got > 1.11 {
		t.Errorf("compatibility = %v, want 1.1", got)
	}
}

func TestConfidenceMargin(t *testing.T) {
	closeRace := map[models.Intent]float64{
		models.IntentTechnical:     0.50,
		models.IntentCompatibility: 0.45,
		models.IntentSummary:       0.1,
		models.IntentSearch:        0.1,
	}
	if _, conf := determinePrimary(closeRace); conf != 0.50*0.8 {
		t.Errorf("close race confidence = %v, want damped", conf)
	}

	clearWin := map[models.Intent]float64{
		models.IntentTechnical:     0.70,
		models.IntentCompatibility: 0.20,
		models.IntentSummary:       0.1,
		models.IntentSearch:        0.1,
	}
	if _, conf := determinePrimary(clearWin); conf != 0.70*1.1 {
		t.Errorf("clear win confidence = %v, want boosted", conf)
	}
}
