package gate

import (
	"sync"
	"time"
)

// Limiter decides whether an identity may proceed under the given per-window
// budget. Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(identity string, limit int) bool
}

// defaultWindow is the rate-limit window length.
const defaultWindow = time.Minute

// pruneSize triggers a sweep of expired counters when the map grows past it.
const pruneSize = 4096

// WindowLimiter is a fixed-window per-identity counter. The counter only
// advances on an allowed pass; denials leave state untouched.
type WindowLimiter struct {
	mu     sync.Mutex
	window time.Duration
	counts map[string]*windowCount
	now    func() time.Time
}

type windowCount struct {
	start time.Time
	n     int
}

// NewWindowLimiter creates a WindowLimiter. Non-positive window falls back
// to one minute.
func NewWindowLimiter(window time.Duration) *WindowLimiter {
	if window <= 0 {
		window = defaultWindow
	}
	return &WindowLimiter{
		window: window,
		counts: make(map[string]*windowCount),
		now:    time.Now,
	}
}

// Allow reports whether identity is within budget for the current window and
// increments its counter when it is. A non-positive limit means unlimited.
func (l *WindowLimiter) Allow(identity string, limit int) bool {
	if limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	wc, ok := l.counts[identity]
	if !ok || now.Sub(wc.start) >= l.window {
		wc = &windowCount{start: now}
		l.counts[identity] = wc
	}
	if wc.n >= limit {
		return false
	}
	wc.n++

	if len(l.counts) > pruneSize {
		l.prune(now)
	}
	return true
}

// prune drops expired windows. Caller holds the lock.
func (l *WindowLimiter) prune(now time.Time) {
	for id, wc := range l.counts {
		if now.Sub(wc.start) >= l.window {
			delete(l.counts, id)
		}
	}
}
