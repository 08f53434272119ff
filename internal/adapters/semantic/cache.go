package semantic

import (
	"strings"
	"sync"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// Label is a remembered classification
type Label struct {
	Category matcher.Category
	Reason   string
}

// Cache remembers classifications by normalised description
type Cache interface {
	Get(key string) (Label, bool)
	Set(key string, label Label)
}

// MemoryCache is a simple in-memory cache implementation
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]Label
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: make(map[string]Label),
	}
}

// Get retrieves a label from cache
func (c *MemoryCache) Get(key string) (Label, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	label, found := c.store[key]
	return label, found
}

// Set stores a label in cache
func (c *MemoryCache) Set(key string, label Label) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = label
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.store)
}

// cacheKey normalises a description; the sign is part of the key since a
// fee and a deposit can share a memo.
func cacheKey(item matcher.UnmatchedItem) string {
	desc := strings.Join(strings.Fields(strings.ToLower(item.Description)), " ")
	if desc == "" {
		return ""
	}
	sign := "+"
	if item.Amount != nil && *item.Amount < 0 {
		sign = "-"
	}
	return sign + desc
}
