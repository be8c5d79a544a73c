package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Engine.MinConfidence != 0.6 {
		t.Errorf("default min_confidence = %v, want 0.6", cfg.Engine.MinConfidence)
	}
	if cfg.Engine.MaxSearchResults != 5 {
		t.Errorf("default max_search_results = %d, want 5", cfg.Engine.MaxSearchResults)
	}
	if cfg.Engine.ResponseCacheSize != 256 {
		t.Errorf("default response_cache_size = %d, want 256", cfg.Engine.ResponseCacheSize)
	}
	for _, key := range []string{"technical", "compatibility", "summary"} {
		if cfg.ResponseTemplates[key] == "" {
			t.Errorf("missing default template %q", key)
		}
	}
}

func TestApplyDefaults_KeepsExplicitTemplate(t *testing.T) {
	cfg := &Config{ResponseTemplates: map[string]string{"technical": "custom {product_id}"}}
	ApplyDefaults(cfg)
	if cfg.ResponseTemplates["technical"] != "custom {product_id}" {
		t.Errorf("explicit template overwritten: %q", cfg.ResponseTemplates["technical"])
	}
	if cfg.ResponseTemplates["summary"] == "" {
		t.Error("missing templates should still be filled in")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  port: 9090
data:
  dir: ./integrated_data
engine:
  min_confidence: 0.5
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Debug {
		t.Error("expected debug true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Engine.MinConfidence != 0.5 {
		t.Errorf("min_confidence = %v, want 0.5", cfg.Engine.MinConfidence)
	}
	want := filepath.Join(dir, "integrated_data")
	if cfg.Data.Dir != want {
		t.Errorf("data dir = %q, want %q", cfg.Data.Dir, want)
	}
	if cfg.Data.ProductsDir() != filepath.Join(want, "products") {
		t.Errorf("products dir = %q", cfg.Data.ProductsDir())
	}
}

func TestLoad_InvalidConfidence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("engine:\n  min_confidence: 1.5\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected validation error for min_confidence > 1")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
