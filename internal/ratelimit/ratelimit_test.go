package ratelimit

import (
	"testing"
	"time"
)

func TestNoop_AlwaysAllows(t *testing.T) {
	var lim Noop
	for i := 0; i < 50; i++ {
		allowed, retry := lim.Allow("anything")
		if !allowed || retry != 0 {
			t.Fatalf("Noop.Allow: got allowed=%v retry=%d", allowed, retry)
		}
	}
}

func TestInMemory_LimitPerKey(t *testing.T) {
	lim := NewInMemory(3, time.Minute)

	for i := 0; i < 3; i++ {
		if allowed, _ := lim.Allow("client1"); !allowed {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	allowed, retry := lim.Allow("client1")
	if allowed {
		t.Fatal("fourth request within the window should be rejected")
	}
	if retry <= 0 {
		t.Errorf("rejection should carry a Retry-After hint, got %d", retry)
	}

	// Another key is unaffected.
	if allowed, _ := lim.Allow("client2"); !allowed {
		t.Error("a fresh key should pass")
	}
}

func TestInMemory_WindowSlides(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := NewInMemory(2, time.Minute)
	lim.now = func() time.Time { return now }

	lim.Allow("k")
	lim.Allow("k")
	if allowed, _ := lim.Allow("k"); allowed {
		t.Fatal("over limit inside the window")
	}

	// After the window passes, the old hits expire.
	now = now.Add(61 * time.Second)
	if allowed, _ := lim.Allow("k"); !allowed {
		t.Fatal("hits older than the window must not count")
	}
}

func TestInMemory_RetryAfterRoundsUp(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := NewInMemory(1, 30*time.Second)
	lim.now = func() time.Time { return now }

	lim.Allow("k")
	now = now.Add(29*time.Second + 500*time.Millisecond)
	_, retry := lim.Allow("k")
	if retry != 1 {
		t.Errorf("sub-second wait should round up to 1, got %d", retry)
	}
}
