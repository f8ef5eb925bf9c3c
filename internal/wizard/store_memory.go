package wizard

import (
	"context"
	"sync"
	"time"

	id "dladmin/pkg/domain"
	"dladmin/pkg/platform/sentinel"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// InMemoryStore keeps sessions in process memory with a sliding TTL.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[id.WizardID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithMemoryClock overrides the store clock.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemoryStore creates a store whose sessions expire after ttl of inactivity.
func NewInMemoryStore(ttl time.Duration, opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[id.WizardID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID] = memoryEntry{session: sess.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, wizardID id.WizardID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(wizardID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.session.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, wizardID id.WizardID, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(wizardID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	next := e.session.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.entries[wizardID] = memoryEntry{session: next, expiresAt: s.now().Add(s.ttl)}
	return next.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, wizardID id.WizardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(wizardID); !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, wizardID)
	return nil
}

// live returns the entry when present and unexpired, evicting it otherwise.
// Callers hold mu.
func (s *InMemoryStore) live(wizardID id.WizardID) (memoryEntry, bool) {
	e, ok := s.entries[wizardID]
	if !ok {
		return memoryEntry{}, false
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.entries, wizardID)
		return memoryEntry{}, false
	}
	return e, true
}

// Len reports the number of stored sessions, expired ones included until touched.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
