package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "/usr/local/var/produktbot/integrated_data"
	}
	if cfg.NLP.EmbeddingDims == 0 {
		cfg.NLP.EmbeddingDims = 384
	}
	if cfg.NLP.EmbeddingMaxTokens == 0 {
		cfg.NLP.EmbeddingMaxTokens = 256
	}
	if cfg.NLP.EmbeddingCacheSize == 0 {
		cfg.NLP.EmbeddingCacheSize = 10000
	}
	if cfg.Engine.MinConfidence == 0 {
		cfg.Engine.MinConfidence = 0.6
	}
	if cfg.Engine.MaxSearchResults == 0 {
		cfg.Engine.MaxSearchResults = 5
	}
	if cfg.Engine.ResponseCacheSize == 0 {
		cfg.Engine.ResponseCacheSize = 256
	}
	if cfg.ResponseTemplates == nil {
		cfg.ResponseTemplates = map[string]string{}
	}
	for key, tmpl := range defaultTemplates {
		if _, ok := cfg.ResponseTemplates[key]; !ok {
			cfg.ResponseTemplates[key] = tmpl
		}
	}
}

var defaultTemplates = map[string]string{
	"technical": "# Tekniska specifikationer för {product_name}\n\n" +
		"**Artikelnummer:** {product_id}\n\n{specifications}",
	"compatibility": "# Kompatibilitetsinformation för {product_name}\n\n" +
		"**Artikelnummer:** {product_id}\n\n{compatibility}",
	"summary": "# {product_name}\n\n" +
		"**Artikelnummer:** {product_id}\n\n" +
		"{description}\n\n{specifications}\n\n{compatibility}",
}
