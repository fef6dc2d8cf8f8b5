package cerberus

import (
	"sync"
	"time"
)

// Result is the outcome of a single Limiter check.
type Result struct {
	Allowed   bool
	Remaining int
}

type window struct {
	count int
	start time.Time
}

// Limiter counts requests per client key in fixed windows. A window opens on
// the first request from a key and lasts for size; at most max requests are
// allowed inside it.
type Limiter struct {
	mu      sync.Mutex
	max     int
	size    time.Duration
	now     func() time.Time
	windows map[string]*window
}

// NewLimiter returns a Limiter allowing max requests per size. A nil clock
// uses time.Now.
func NewLimiter(max int, size time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		max:     max,
		size:    size,
		now:     now,
		windows: make(map[string]*window),
	}
}

// Check counts a request from key against its window.
func (l *Limiter) Check(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || l.expired(w, now) {
		l.windows[key] = &window{count: 1, start: now}
		return Result{Allowed: true, Remaining: l.max - 1}
	}

	// count never passes max, so a rejected request leaves the window unchanged.
	if w.count >= l.max {
		return Result{Allowed: false, Remaining: 0}
	}
	w.count++
	return Result{Allowed: true, Remaining: l.max - w.count}
}

// Refund gives back one request to key's current window. Successful logins
// are refunded so that only failed attempts consume quota.
func (l *Limiter) Refund(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.expired(w, l.now()) || w.count == 0 {
		return
	}
	w.count--
}

// Sweep drops windows that have rolled over and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.windows {
		if l.expired(w, now) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Max returns the per-window request allowance.
func (l *Limiter) Max() int { return l.max }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.size }

func (l *Limiter) expired(w *window, now time.Time) bool {
	return !now.Before(w.start.Add(l.size))
}
