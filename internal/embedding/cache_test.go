package embedding

import "testing"

func TestEmbeddingCacheEviction(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("vad väger låshuset?"); ok || v != nil {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("vad väger låshuset?", []float32{1, 2, 3})
	v, ok := c.Get("vad väger låshuset?")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get = %v, %v", v, ok)
	}

	c.Set("passar cylindern?", []float32{4, 5})
	c.Set("vilka mått?", []float32{6}) // evicts the oldest
	if _, ok := c.Get("vad väger låshuset?"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestEmbeddingCacheGetRefreshesRecency(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})

	// Touching a makes b the eviction candidate.
	c.Get("a")
	c.Set("c", []float32{3})

	if _, ok := c.Get("a"); !ok {
		t.Error("recently read entry evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("stale entry survived eviction")
	}
}
