package keywords

import (
	"math"
	"sync"
	"time"
)

// RateBudget enforces a sliding-window call budget per provider key:
// a call is allowed only while the number of calls in the trailing
// window stays below the configured maximum. One instance is built at
// startup and shared by reference; it is safe for concurrent use.
type RateBudget struct {
	mu      sync.Mutex
	limits  map[string]budgetLimit
	history map[string][]time.Time
	now     func() time.Time
}

type budgetLimit struct {
	maxCalls int
	window   time.Duration
}

// NewRateBudget creates an empty budget. Keys without a configured
// limit are unrestricted.
func NewRateBudget() *RateBudget {
	return &RateBudget{
		limits:  make(map[string]budgetLimit),
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Configure sets the budget for one provider key.
func (b *RateBudget) Configure(key string, maxCalls int, window time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limits[key] = budgetLimit{maxCalls: maxCalls, window: window}
}

// Allow records one call against key if the trailing window has room
// and reports whether the call may proceed. Over-budget calls are not
// queued; the caller is expected to skip to the next provider.
func (b *RateBudget) Allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	limit, configured := b.limits[key]
	if !configured {
		return true
	}

	now := b.now()
	recent := b.pruneLocked(key, now, limit.window)
	if len(recent) >= limit.maxCalls {
		b.history[key] = recent
		return false
	}
	b.history[key] = append(recent, now)
	return true
}

// Remaining reports how many calls key may still make in the current
// window without consuming any.
func (b *RateBudget) Remaining(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	limit, configured := b.limits[key]
	if !configured {
		return math.MaxInt
	}

	recent := b.pruneLocked(key, b.now(), limit.window)
	b.history[key] = recent
	return limit.maxCalls - len(recent)
}

// pruneLocked drops timestamps that have slid out of the window.
func (b *RateBudget) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	history := b.history[key]
	kept := history[:0]
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
