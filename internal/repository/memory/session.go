// Package memory keeps dashboard sessions in process memory. It is used when
// no Redis URL is configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/discount-generator/internal/service/campaign"
)

type entry struct {
	session   campaign.Session
	expiresAt time.Time
}

// SessionRepo implements campaign.Repository with a mutex-guarded map.
// Expired sessions are dropped lazily on access and by Sweep.
type SessionRepo struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewSessionRepo creates an empty repository.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{entries: make(map[string]entry), now: time.Now}
}

// WithClock replaces the expiry clock. Intended for tests.
func (r *SessionRepo) WithClock(now func() time.Time) *SessionRepo {
	r.now = now
	return r
}

func (r *SessionRepo) Get(_ context.Context, id string) (*campaign.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, campaign.ErrSessionNotFound
	}
	if !e.expiresAt.IsZero() && !r.now().Before(e.expiresAt) {
		delete(r.entries, id)
		return nil, campaign.ErrSessionNotFound
	}
	s := e.session
	return &s, nil
}

// Save stores a copy of s. A non-positive ttl never expires.
func (r *SessionRepo) Save(_ context.Context, s *campaign.Session, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := entry{session: *s}
	if ttl > 0 {
		e.expiresAt = r.now().Add(ttl)
	}
	r.entries[s.ID] = e
	return nil
}

func (r *SessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (r *SessionRepo) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, e := range r.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired or not.
func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
