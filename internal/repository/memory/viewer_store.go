package memory

import (
	"context"
	"sync"
	"time"

	"eventcircle/internal/domain"
)

type viewerEntry struct {
	user      domain.User
	expiresAt time.Time
}

type viewerStore struct {
	mu        sync.Mutex
	values    map[string]viewerEntry
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// NewViewerStore returns a process-local ViewerStore. Selections are lost on
// restart and expire ttl after they were last written. A zero ttl keeps them forever.
func NewViewerStore(ttl time.Duration) domain.ViewerStore {
	return &viewerStore{
		values: make(map[string]viewerEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *viewerStore) Get(ctx context.Context, scope, key string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + "/" + key
	entry, ok := s.values[k]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.expired(entry, s.now()) {
		delete(s.values, k)
		return nil, domain.ErrNotFound
	}
	u := entry.user
	return &u, nil
}

func (s *viewerStore) Set(ctx context.Context, scope, key string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	entry := viewerEntry{user: *user}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.values[scope+"/"+key] = entry
	return nil
}

func (s *viewerStore) expired(entry viewerEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

// sweep drops expired entries, at most once per tenth of the ttl.
func (s *viewerStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return
	}
	for k, entry := range s.values {
		if s.expired(entry, now) {
			delete(s.values, k)
		}
	}
	s.nextSweep = now.Add(s.ttl / 10)
}
