package engine

import (
	"container/list"
	"sync"

	"github.com/skarvik/produktbot/internal/models"
)

// responseCache is a bounded LRU over command responses, keyed by
// command, product ID and params.
type responseCache struct {
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type responseEntry struct {
	key      string
	response *models.Response
}

func newResponseCache(capacity int) *responseCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &responseCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// get returns a copy of the cached response marked as cached.
func (c *responseCache) get(key string) (*models.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	copied := *elem.Value.(*responseEntry).response
	copied.Cached = true
	return &copied, true
}

func (c *responseCache) set(key string, response *models.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*responseEntry).response = response
		return
	}

	elem := c.lru.PushFront(&responseEntry{key: key, response: response})
	c.entries[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*responseEntry).key)
		}
	}
}

func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
