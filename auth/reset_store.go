package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ResetTokenStore hands out single-use password-reset tokens with a
// bounded lifetime.
type ResetTokenStore interface {
	// Issue creates a token bound to the given user id.
	Issue(userID int64) string
	// Lookup returns the user id bound to the token, if the token is
	// still live.
	Lookup(token string) (int64, bool)
	// Redeem consumes the token, returning the bound user id. A token
	// can be redeemed at most once.
	Redeem(token string) (int64, bool)
}

type resetEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryResetStore is an in-memory ResetTokenStore. Entries expire
// after the configured TTL; expired entries are dropped lazily on
// access.
type MemoryResetStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   clockwork.Clock
	entries map[string]resetEntry
}

// NewMemoryResetStore creates a reset-token store with the given TTL.
func NewMemoryResetStore(ttl time.Duration, clock clockwork.Clock) *MemoryResetStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryResetStore{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]resetEntry),
	}
}

func (s *MemoryResetStore) Issue(userID int64) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.entries[token] = resetEntry{
		userID:    userID,
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	return token
}

func (s *MemoryResetStore) Lookup(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || s.clock.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return 0, false
	}
	return entry.userID, true
}

func (s *MemoryResetStore) Redeem(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || s.clock.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return 0, false
	}
	delete(s.entries, token)
	return entry.userID, true
}

// purgeLocked drops expired entries. Caller holds the mutex.
func (s *MemoryResetStore) purgeLocked() {
	now := s.clock.Now()
	for token, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, token)
		}
	}
}
