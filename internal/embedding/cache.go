package embedding

import (
	"container/list"
	"sync"
)

// EmbeddingCache is an LRU cache of query embeddings. Product questions
// repeat heavily across sessions ("vad passar till 50091812?"), so caching
// by exact text avoids most inference runs.
type EmbeddingCache struct {
	capacity int
	entries  map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	text   string
	vector []float32
}

// NewEmbeddingCache creates a cache holding at most capacity embeddings.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached embedding for text and marks it recently used.
// Recency updates mutate the list, so reads take the write lock too.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[text]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).vector, true
}

// Set stores the embedding for text, evicting the least recently used entry
// when the cache is full.
func (c *EmbeddingCache) Set(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[text]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).vector = vector
		return
	}

	c.entries[text] = c.order.PushFront(&cacheEntry{text: text, vector: vector})
	if c.order.Len() > c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).text)
		}
	}
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
