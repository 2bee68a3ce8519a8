package cache

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T, maxItems int) (*Cache[string], *time.Time) {
	t.Helper()
	c := New[string](Config{MaxItems: maxItems, DefaultTTL: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(c.Close)

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestSetGetDelete(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Expected a=1, got %q (found=%v)", v, ok)
	}

	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Errorf("Expected overwrite to 2, got %q", v)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 item after overwrite, got %d", c.Len())
	}

	if !c.Delete("a") {
		t.Error("Expected Delete to report the key was present")
	}
	if c.Delete("a") {
		t.Error("Expected second Delete to report absence")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be gone")
	}
}

func TestExpiration(t *testing.T) {
	c, now := newTestCache(t, 10)

	c.SetWithTTL("short", "x", time.Second)
	c.Set("long", "y")

	*now = now.Add(2 * time.Second)

	if _, ok := c.Get("short"); ok {
		t.Error("Expected short-lived item to expire")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("Expected default-TTL item to survive")
	}

	*now = now.Add(time.Hour)
	c.deleteExpired()
	if c.Len() != 0 {
		t.Errorf("Expected janitor sweep to empty the cache, got %d items", c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // a becomes most recently used
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Expected %s to remain", key)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New[int](Config{})
	c.Close()
	c.Close()
}
