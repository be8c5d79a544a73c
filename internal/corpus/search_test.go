package corpus

import (
	"strings"
	"testing"
)

func TestSearchExactTokens(t *testing.T) {
	store := newTestStore(t)

	res := store.Search("låshus", 5)
	if res.Status != "success" {
		t.Fatalf("status = %q", res.Status)
	}
	if len(res.Matches) == 0 || res.Matches[0].ProductID != "50091812" {
		t.Fatalf("matches = %+v", res.Matches)
	}
	if !strings.Contains(res.FormattedText, "Låshus 310-50") {
		t.Errorf("formatted text missing product name:\n%s", res.FormattedText)
	}
}

func TestSearchFuzzyName(t *testing.T) {
	store := newTestStore(t)

	// No word-index token matches, but the name overlaps on two tokens.
	res := store.Search("310-50 trycke", 5)
	if res.Status != "success" {
		t.Fatalf("status = %q, message = %q", res.Status, res.Message)
	}
	if res.Matches[0].ProductID != "50091812" {
		t.Errorf("top match = %+v", res.Matches[0])
	}
}

func TestSearchRanking(t *testing.T) {
	store := newTestStore(t)

	// "modern" indexes both products; "cylinder" only one. The cylinder
	// should rank first on token coverage.
	res := store.Search("modern cylinder", 5)
	if res.Status != "success" {
		t.Fatalf("status = %q", res.Status)
	}
	if res.Matches[0].ProductID != "50080864" {
		t.Errorf("top match = %+v, want cylinder first", res.Matches[0])
	}
	if len(res.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(res.Matches))
	}
}

func TestSearchNoResults(t *testing.T) {
	store := newTestStore(t)

	if res := store.Search("helt orelaterad fråga utan träffar", 5); res.Status != "no_results" {
		t.Errorf("status = %q, want no_results", res.Status)
	}
	if res := store.Search("!!!", 5); res.Status != "no_results" {
		t.Errorf("empty token query: status = %q", res.Status)
	}
}

func TestSearchLimit(t *testing.T) {
	store := newTestStore(t)

	res := store.Search("modern", 1)
	if len(res.Matches) != 1 {
		t.Errorf("matches = %d, want 1", len(res.Matches))
	}
}

func TestSuggestProducts(t *testing.T) {
	store := newTestStore(t)

	suggestions := store.SuggestProducts("låshus", 3)
	if len(suggestions) == 0 {
		t.Fatal("no suggestions for indexed token")
	}
	if got := store.SuggestProducts("xyzzy okänt", 3); got != nil {
		t.Errorf("suggestions for no-hit query = %v, want nil", got)
	}
}
