package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	c := New[[]byte](10, time.Minute)

	key := Fingerprint("https://example.com/page")
	payload := []byte("<html><body>cached</body></html>")
	c.Set(key, payload)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q, want byte-identical content", got)
	}
}

func TestCacheExpiryIsAMiss(t *testing.T) {
	c := New[string](10, 20*time.Millisecond)

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before TTL")
	}

	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestCacheLastWriterWins(t *testing.T) {
	c := New[int](10, time.Minute)

	c.Set("k", 1)
	c.Set("k", 2)

	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestCacheEvictsOldestBeyondCapacity(t *testing.T) {
	c := New[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry should survive")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("https://example.com", "analyze")
	b := Fingerprint("https://example.com", "analyze")
	if a != b {
		t.Error("fingerprint should be stable for identical parts")
	}
	if a == Fingerprint("https://example.com", "research") {
		t.Error("different parts should produce different fingerprints")
	}
	if len(a) != 32 {
		t.Errorf("fingerprint length = %d, want 32 hex chars", len(a))
	}
}
