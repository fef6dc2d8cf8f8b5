// Package session issues and tracks server-side login sessions. A session is
// referenced by an opaque random identifier carried in a signed cookie and
// expires after a period of inactivity.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/models"
)

// Identity is the logged-in user a session is bound to.
type Identity struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// Session is an authenticated client.
type Session struct {
	ID string `json:"-"`
	Identity
	CreatedAt     time.Time `json:"created_at"`
	LastTouchedAt time.Time `json:"last_touched_at"`
}

// IsAdmin reports whether the session belongs to an ADMIN.
func (s Session) IsAdmin() bool {
	return s.UserType == models.RoleAdmin
}

// Authority creates, resolves and destroys sessions.
type Authority struct {
	mu      sync.Mutex
	store   Store
	idle    time.Duration
	refresh bool
	now     func() time.Time
}

// NewAuthority returns an Authority backed by store.
func NewAuthority(store Store, cfg config.SessionConfig) *Authority {
	return NewAuthorityWithClock(store, cfg, time.Now)
}

// NewAuthorityWithClock is NewAuthority with an explicit clock.
func NewAuthorityWithClock(store Store, cfg config.SessionConfig, now func() time.Time) *Authority {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = config.DefaultSessionConfig().IdleTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Authority{store: store, idle: idle, refresh: cfg.RefreshOnAccess, now: now}
}

// IdleTimeout returns how long an untouched session lives.
func (a *Authority) IdleTimeout() time.Duration { return a.idle }

// Login opens a session for an identity whose credentials the caller has
// already verified.
func (a *Authority) Login(id Identity) Session {
	now := a.now()
	s := Session{
		ID:            uuid.NewString(),
		Identity:      id,
		CreatedAt:     now,
		LastTouchedAt: now,
	}
	a.store.Put(s)
	return s
}

// Current returns the session for id if it exists and has been touched within
// the idle timeout. Expired sessions are dropped and reported absent. With
// refresh-on-access enabled, a successful lookup restarts the idle timer.
func (a *Authority) Current(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.store.Get(id)
	if !ok {
		return Session{}, false
	}
	now := a.now()
	if now.Sub(s.LastTouchedAt) > a.idle {
		a.store.Delete(id)
		return Session{}, false
	}
	if a.refresh {
		s.LastTouchedAt = now
		a.store.Put(s)
	}
	return s, true
}

// Destroy removes the session. Unknown ids are ignored.
func (a *Authority) Destroy(id string) {
	if id == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.Delete(id)
}

// Sweep removes every session idle for longer than the timeout.
func (a *Authority) Sweep() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Sweep(a.now().Add(-a.idle))
}
