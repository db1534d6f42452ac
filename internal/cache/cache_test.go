package cache

import (
	"bytes"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration, maxEntries int) *PosterCache {
	t.Helper()
	c, err := OpenInMemory(ttl, maxEntries)
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	c := newTestCache(t, time.Hour, 10)

	want := []byte("jpeg-bytes")
	if err := c.Put("https://img/poster.jpg", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get("https://img/poster.jpg")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get returned %q, want %q", got, want)
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t, time.Hour, 10)

	got, err := c.Get("https://img/missing.jpg")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on miss, got %d bytes", len(got))
	}
}

func TestPutOverwrites(t *testing.T) {
	c := newTestCache(t, time.Hour, 10)

	c.Put("url", []byte("old"))
	c.Put("url", []byte("new"))

	got, err := c.Get("url")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("new")) {
		t.Errorf("Get returned %q, want %q", got, "new")
	}

	count, _ := c.Count()
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestExpiry(t *testing.T) {
	c := newTestCache(t, 10*time.Millisecond, 10)

	c.Put("url", []byte("data"))
	time.Sleep(25 * time.Millisecond)

	got, err := c.Get("url")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("expired entry returned as a hit")
	}

	count, _ := c.Count()
	if count != 0 {
		t.Errorf("expired entry not evicted, Count = %d", count)
	}
}

func TestLRUEviction(t *testing.T) {
	c := newTestCache(t, time.Hour, 3)

	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Put("c", []byte("3"))

	// Touch "a" so "b" becomes least recently used.
	time.Sleep(2 * time.Millisecond)
	if _, err := c.Get("a"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	c.Put("d", []byte("4"))

	count, _ := c.Count()
	if count != 3 {
		t.Fatalf("Count = %d, want 3", count)
	}

	if got, _ := c.Get("b"); got != nil {
		t.Error("least recently used entry survived eviction")
	}
	if got, _ := c.Get("a"); got == nil {
		t.Error("recently used entry was evicted")
	}
	if got, _ := c.Get("d"); got == nil {
		t.Error("newest entry was evicted")
	}
}

func TestPurge(t *testing.T) {
	c := newTestCache(t, time.Hour, 10)

	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	if err := c.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	count, _ := c.Count()
	if count != 0 {
		t.Errorf("Count = %d after purge, want 0", count)
	}
}
