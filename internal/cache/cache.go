// File: internal/cache/cache.go

package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry is a cached value with its expiration
type entry[V any] struct {
	key        string
	value      V
	expiration time.Time
}

// Cache is a thread-safe LRU cache with per-item TTL
type Cache[V any] struct {
	maxItems   int
	defaultTTL time.Duration
	items      map[string]*list.Element
	evictList  *list.List
	mu         sync.Mutex
	janitor    *janitor
	now        func() time.Time
}

// Config holds cache configuration options
type Config struct {
	MaxItems        int
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig creates a default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems:        10000,
		DefaultTTL:      24 * time.Hour,
		CleanupInterval: time.Minute,
	}
}

// New creates a cache and starts its background cleanup
func New[V any](config Config) *Cache[V] {
	def := DefaultConfig()
	if config.MaxItems <= 0 {
		config.MaxItems = def.MaxItems
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = def.DefaultTTL
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	c := &Cache[V]{
		maxItems:   config.MaxItems,
		defaultTTL: config.DefaultTTL,
		items:      make(map[string]*list.Element),
		evictList:  list.New(),
		now:        time.Now,
		janitor: &janitor{
			interval: config.CleanupInterval,
			stop:     make(chan struct{}),
		},
	}

	go c.janitor.run(c.deleteExpired)

	return c
}

// Set stores value under key with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key, replacing any existing entry
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		e := element.Value.(*entry[V])
		e.value = value
		e.expiration = c.now().Add(ttl)
		c.evictList.MoveToFront(element)
		return
	}

	for c.evictList.Len() >= c.maxItems {
		c.removeElement(c.evictList.Back())
	}

	c.items[key] = c.evictList.PushFront(&entry[V]{
		key:        key,
		value:      value,
		expiration: c.now().Add(ttl),
	})
}

// Get returns the value for key if present and not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	element, ok := c.items[key]
	if !ok {
		return zero, false
	}

	e := element.Value.(*entry[V])
	if !c.now().Before(e.expiration) {
		c.removeElement(element)
		return zero, false
	}

	c.evictList.MoveToFront(element)
	return e.value, true
}

// Delete removes key and reports whether it was present
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(element)
	return true
}

// Len returns the number of items, including expired ones not yet collected
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Close stops the janitor
func (c *Cache[V]) Close() {
	c.janitor.once.Do(func() { close(c.janitor.stop) })
}

func (c *Cache[V]) removeElement(element *list.Element) {
	if element == nil {
		return
	}
	c.evictList.Remove(element)
	delete(c.items, element.Value.(*entry[V]).key)
}

func (c *Cache[V]) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, element := range c.items {
		if !now.Before(element.Value.(*entry[V]).expiration) {
			c.removeElement(element)
		}
	}
}

// janitor cleans up expired items at regular intervals
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func (j *janitor) run(cleanup func()) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleanup()
		case <-j.stop:
			return
		}
	}
}
