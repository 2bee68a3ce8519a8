package session

import (
	"context"
	"maps"
	"time"

	"github.com/XZXY-AI/reddit-crawler/internal/cache"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	cache *cache.Cache[map[string]string]
	ttl   time.Duration
}

// NewMemoryStore creates an in-memory store whose sessions expire after ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New[map[string]string](cache.Config{DefaultTTL: ttl}),
		ttl:   ttl,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (map[string]string, error) {
	values, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(values), nil
}

func (m *MemoryStore) Save(_ context.Context, id string, values map[string]string) error {
	m.cache.SetWithTTL(id, maps.Clone(values), m.ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

// Close stops background expiry
func (m *MemoryStore) Close() error {
	m.cache.Close()
	return nil
}
