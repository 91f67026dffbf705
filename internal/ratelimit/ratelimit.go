package ratelimit

import (
	"sync"
	"time"
)

// Limiter answers whether a request identified by key may proceed. When it
// may not, retryAfterSec hints the Retry-After header (0 = omit).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop allows everything. Used when rate limiting is switched off.
type Noop struct{}

func (Noop) Allow(string) (bool, int) { return true, 0 }

type bucket struct {
	hits []time.Time
}

// InMemory is a per-key sliding-window limiter. It only sees one process, so
// behind a load balancer the effective limit is per instance.
type InMemory struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewInMemory allows up to limit requests per key within each window.
func NewInMemory(limit int, window time.Duration) *InMemory {
	return &InMemory{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (r *InMemory) Allow(key string) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b := r.buckets[key]
	if b == nil {
		b = &bucket{}
		r.buckets[key] = b
	}
	b.expire(now.Add(-r.window))

	if len(b.hits) >= r.limit {
		return false, retryAfter(b.hits[0].Add(r.window).Sub(now))
	}
	b.hits = append(b.hits, now)
	return true, 0
}

// expire drops hits at or before the cutoff; hits are appended in time order,
// so the survivors are a suffix.
func (b *bucket) expire(cutoff time.Time) {
	keep := 0
	for keep < len(b.hits) && !b.hits[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		b.hits = append(b.hits[:0], b.hits[keep:]...)
	}
}

func retryAfter(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	sec := int(d.Seconds())
	if sec < 1 {
		sec = 1
	}
	return sec
}
