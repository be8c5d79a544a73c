package e2e

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
	"github.com/skarvik/produktbot/internal/corpus"
	"github.com/skarvik/produktbot/internal/engine"
	"github.com/skarvik/produktbot/internal/models"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	dir := t.TempDir()
	if err := WriteCorpus(dir); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	cfg := config.Default(dir)
	// The mock pipeline has no embedder, so combined scores stay small; a low
	// threshold keeps confident keyword matches out of the clarification path.
	cfg.Engine.MinConfidence = 0.05

	store, err := corpus.NewStore(&cfg.Data, zap.NewNop())
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	return engine.New(context.Background(), cfg, store, nil, nil, zap.NewNop())
}

func runCase(t *testing.T, eng *engine.Engine, tc QueryTestCase) {
	t.Helper()
	resp := eng.ProcessInput(context.Background(), tc.Input, models.NewSessionContext())
	if resp.Status != tc.ExpectedStatus {
		t.Fatalf("input %q: status = %q, want %q (text: %s)", tc.Input, resp.Status, tc.ExpectedStatus, resp.Text)
	}
	if tc.ExpectedProduct != "" && resp.ProductID != tc.ExpectedProduct {
		t.Errorf("input %q: product = %q, want %q", tc.Input, resp.ProductID, tc.ExpectedProduct)
	}
	if tc.ExpectedText != "" && !strings.Contains(resp.Text, tc.ExpectedText) {
		t.Errorf("input %q: text missing %q:\n%s", tc.Input, tc.ExpectedText, resp.Text)
	}
}

func TestE2E_Commands(t *testing.T) {
	eng := newEngine(t)
	for _, tc := range CommandTestCases() {
		t.Run(tc.Description, func(t *testing.T) {
			runCase(t, eng, tc)
		})
	}
}

func TestE2E_NaturalLanguage(t *testing.T) {
	eng := newEngine(t)
	for _, tc := range NaturalLanguageTestCases() {
		t.Run(tc.Description, func(t *testing.T) {
			runCase(t, eng, tc)
		})
	}
}

// TestE2E_Conversation walks a session through a command, an anaphoric
// follow-up and a compatibility question, checking that context carries the
// active product across turns.
func TestE2E_Conversation(t *testing.T) {
	eng := newEngine(t)
	session := models.NewSessionContext()
	ctx := context.Background()

	resp := eng.ProcessInput(ctx, "-t 50091812", session)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("turn 1: status = %q", resp.Status)
	}
	if session.ActiveProductID != "50091812" {
		t.Fatalf("turn 1: active product = %q", session.ActiveProductID)
	}

	resp = eng.ProcessInput(ctx, "Vilka mått har den?", session)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("turn 2: status = %q (text: %s)", resp.Status, resp.Text)
	}
	if resp.ProductID != "50091812" {
		t.Errorf("turn 2: anaphor resolved to %q", resp.ProductID)
	}
	if !strings.Contains(resp.Text, "Dorndjup") {
		t.Errorf("turn 2: text missing specs:\n%s", resp.Text)
	}

	resp = eng.ProcessInput(ctx, "Passar den tillsammans med trycket, är den kompatibel?", session)
	if resp.Status != models.StatusSuccess {
		t.Fatalf("turn 3: status = %q (text: %s)", resp.Status, resp.Text)
	}
	if resp.Intent != models.IntentCompatibility {
		t.Errorf("turn 3: intent = %q", resp.Intent)
	}
	if !strings.Contains(resp.Text, "Cylinder 1301") {
		t.Errorf("turn 3: text missing relations:\n%s", resp.Text)
	}

	state := eng.ConversationState(session)
	if state.Stage != models.StageDetailedInquiry {
		t.Errorf("stage = %q, want %q", state.Stage, models.StageDetailedInquiry)
	}
	if len(session.QueryHistory) != 3 {
		t.Errorf("history = %d entries", len(session.QueryHistory))
	}
}
