package session

import (
	"context"
	"errors"
	"maps"
	"sync"
)

// Keys stored in a browser session
const (
	KeyState       = "state"
	KeyAccessToken = "access_token"
)

// ErrNotFound is returned by a Store when no session exists for an id
var ErrNotFound = errors.New("session not found")

// Store persists session values keyed by session id.
// Implementations own expiry; a session that has expired is reported as ErrNotFound.
type Store interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, values map[string]string) error
	Delete(ctx context.Context, id string) error
}

// Session is the key/value state of one browser session for the duration of a request
type Session struct {
	id    string
	store Store

	mu      sync.Mutex
	values  map[string]string
	dirty   bool
	onDirty func()
}

func newSession(id string, store Store, values map[string]string) *Session {
	if values == nil {
		values = make(map[string]string)
	}
	return &Session{id: id, store: store, values: values}
}

// ID returns the session identifier carried by the cookie
func (s *Session) ID() string { return s.id }

// Get returns the value stored under key
func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key. The change is persisted by Save.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.markDirty()
	s.mu.Unlock()
}

// Remove deletes key from the session
func (s *Session) Remove(key string) {
	s.mu.Lock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.markDirty()
	}
	s.mu.Unlock()
}

// Save writes the session to its store if anything changed
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	values := maps.Clone(s.values)
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.id, values); err != nil {
		return err
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// markDirty must be called with mu held
func (s *Session) markDirty() {
	if !s.dirty && s.onDirty != nil {
		s.onDirty()
		s.onDirty = nil
	}
	s.dirty = true
}
