// Package integration exercises the HTTP API against a full engine.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
	"github.com/skarvik/produktbot/internal/corpus"
	"github.com/skarvik/produktbot/internal/engine"
	"github.com/skarvik/produktbot/internal/models"
	"github.com/skarvik/produktbot/internal/server"
	"github.com/skarvik/produktbot/test/e2e"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := e2e.WriteCorpus(dir); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	cfg := config.Default(dir)
	cfg.Engine.MinConfidence = 0.05
	store, err := corpus.NewStore(&cfg.Data, zap.NewNop())
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	eng := engine.New(context.Background(), cfg, store, nil, nil, zap.NewNop())
	srv := server.NewServer(eng, store, &cfg.Server, zap.NewNop())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postQuery(t *testing.T, ts *httptest.Server, payload map[string]string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := http.Post(ts.URL+"/api/v1/query", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var out map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, out
}

func TestIntegration_QueryRoundTrip(t *testing.T) {
	ts := newAPIServer(t)

	resp, out := postQuery(t, ts, map[string]string{"text": "-t 50091812"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code: %d", resp.StatusCode)
	}

	var sessionID string
	if err := json.Unmarshal(out["session_id"], &sessionID); err != nil || sessionID == "" {
		t.Fatalf("session_id: %v (%s)", err, out["session_id"])
	}
	var engineResp models.Response
	if err := json.Unmarshal(out["response"], &engineResp); err != nil {
		t.Fatal(err)
	}
	if engineResp.Status != models.StatusSuccess {
		t.Errorf("response status = %q", engineResp.Status)
	}
	if engineResp.ProductID != "50091812" {
		t.Errorf("product = %q", engineResp.ProductID)
	}

	// Session carries the active product: an anaphoric follow-up resolves
	// against the product from the first turn.
	_, out = postQuery(t, ts, map[string]string{
		"session_id": sessionID,
		"text":       "berätta om den",
	})
	if err := json.Unmarshal(out["response"], &engineResp); err != nil {
		t.Fatal(err)
	}
	if engineResp.ProductID != "50091812" {
		t.Errorf("follow-up product = %q (status %q)", engineResp.ProductID, engineResp.Status)
	}
}

func TestIntegration_ProductEndpoints(t *testing.T) {
	ts := newAPIServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/products/50091812/related")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("related: status %d", resp.StatusCode)
	}
	var related struct {
		Related []corpus.RelatedProduct `json:"related"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&related); err != nil {
		t.Fatal(err)
	}
	if len(related.Related) != 3 {
		t.Errorf("related = %d entries, want 3", len(related.Related))
	}

	resp, err = http.Get(ts.URL + "/api/v1/products/50046137/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("summary: status %d", resp.StatusCode)
	}
}

func TestIntegration_HealthAndStats(t *testing.T) {
	ts := newAPIServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health: status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats engine.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Corpus.Products != 6 {
		t.Errorf("corpus products = %d, want 6", stats.Corpus.Products)
	}
}
