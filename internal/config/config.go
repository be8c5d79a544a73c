// Package config provides configuration loading and structs for the produktbot engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	NLP    NLPConfig    `yaml:"nlp"`
	Engine EngineConfig `yaml:"engine"`
	// ResponseTemplates are per-intent templates with {product_name}, {product_id},
	// {specifications}, {compatibility} and {description} placeholders.
	ResponseTemplates map[string]string `yaml:"response_templates"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DataConfig holds paths to the precomputed product corpus.
type DataConfig struct {
	// Dir is the integrated-data root; products live under Dir/products/<id>/
	// and index files under Dir/indices/.
	Dir string `yaml:"dir"`
}

// ProductsDir returns the per-product data directory.
func (d *DataConfig) ProductsDir() string { return filepath.Join(d.Dir, "products") }

// IndicesDir returns the index file directory.
func (d *DataConfig) IndicesDir() string { return filepath.Join(d.Dir, "indices") }

// NLPConfig holds optional model settings. When UseNLP is false the engine runs
// with pattern and dictionary extraction only.
type NLPConfig struct {
	UseNLP             bool   `yaml:"use_nlp"`
	EmbeddingModelPath string `yaml:"embedding_model_path"`
	EmbeddingDims      int    `yaml:"embedding_dimensions"`
	EmbeddingMaxTokens int    `yaml:"embedding_max_tokens"`
	EmbeddingCacheSize int    `yaml:"embedding_cache_size"`
}

// EngineConfig holds query processing settings.
type EngineConfig struct {
	MinConfidence     float64 `yaml:"min_confidence"`
	MaxSearchResults  int     `yaml:"max_search_results"`
	ResponseCacheSize int     `yaml:"response_cache_size"`
}

// Load reads and parses the config file at path, applies defaults, expands paths,
// and validates. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Data.Dir = expandPath(cfg.Data.Dir, configDir)
	if cfg.NLP.EmbeddingModelPath != "" {
		cfg.NLP.EmbeddingModelPath = expandPath(cfg.NLP.EmbeddingModelPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with all defaults applied and the given data directory.
func Default(dataDir string) *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	return cfg
}

// Validate checks value ranges that would otherwise fail silently at query time.
func (c *Config) Validate() error {
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("engine.min_confidence must be in [0,1], got %v", c.Engine.MinConfidence)
	}
	if c.Engine.MaxSearchResults <= 0 {
		return fmt.Errorf("engine.max_search_results must be positive, got %d", c.Engine.MaxSearchResults)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
