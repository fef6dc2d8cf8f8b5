package cerberus

import (
	"sync"
	"time"
)

// Blocklist holds clients that are banned until a fixed time. Entries expire
// lazily: the first lookup after the deadline removes them.
type Blocklist struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]time.Time
}

// NewBlocklist returns an empty Blocklist. A nil clock uses time.Now.
func NewBlocklist(now func() time.Time) *Blocklist {
	if now == nil {
		now = time.Now
	}
	return &Blocklist{now: now, entries: make(map[string]time.Time)}
}

// IsBlocked reports whether key is blocked and, if so, how many whole minutes
// (rounded up) remain until it is released.
func (b *Blocklist) IsBlocked(key string) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	unblockAt, ok := b.entries[key]
	if !ok {
		return false, 0
	}
	now := b.now()
	if !now.Before(unblockAt) {
		delete(b.entries, key)
		return false, 0
	}
	return true, ceilMinutes(unblockAt.Sub(now))
}

// Block bans key for d and returns the retry time in minutes. Blocking an
// already blocked key moves its deadline.
func (b *Blocklist) Block(key string, d time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[key] = b.now().Add(d)
	return ceilMinutes(d)
}

// Sweep removes expired entries and returns how many were dropped.
func (b *Blocklist) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for key, unblockAt := range b.entries {
		if !now.Before(unblockAt) {
			delete(b.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired or not.
func (b *Blocklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
