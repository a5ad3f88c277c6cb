package storage

import (
	"context"
	"sync"
	"time"
)

// Ensure MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

// MemoryStore is the default storage layer: plain maps behind RW mutexes.
// Suitable for single-instance deployments and tests.
type MemoryStore struct {
	sessions      map[string]*TrackedSession // keyed by token digest
	sessionsMutex sync.RWMutex
	users         map[string]*UserInfo // keyed by email
	usersMutex    sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*TrackedSession),
		users:    make(map[string]*UserInfo),
	}
}

// TrackSession creates or refreshes a session record
func (s *MemoryStore) TrackSession(ctx context.Context, session TrackedSession) error {
	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	if existing, exists := s.sessions[session.TokenDigest]; exists {
		existing.LastActive = time.Now()
	} else {
		sessionCopy := session
		if sessionCopy.LastActive.IsZero() {
			sessionCopy.LastActive = time.Now()
		}
		s.sessions[session.TokenDigest] = &sessionCopy
	}
	return nil
}

// RevokeSession removes a session record. Unknown digests are a no-op so
// signout stays idempotent.
func (s *MemoryStore) RevokeSession(ctx context.Context, tokenDigest string) error {
	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	delete(s.sessions, tokenDigest)
	return nil
}

// GetActiveSessions returns all unexpired session records
func (s *MemoryStore) GetActiveSessions(ctx context.Context) ([]TrackedSession, error) {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()

	now := time.Now()
	sessions := make([]TrackedSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(now) {
			continue
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// UpsertUser creates or updates a user's last seen time
func (s *MemoryStore) UpsertUser(ctx context.Context, email string) error {
	s.usersMutex.Lock()
	defer s.usersMutex.Unlock()

	if user, exists := s.users[email]; exists {
		user.LastSeen = time.Now()
	} else {
		s.users[email] = &UserInfo{
			Email:     email,
			FirstSeen: time.Now(),
			LastSeen:  time.Now(),
		}
	}
	return nil
}

// GetAllUsers returns all users
func (s *MemoryStore) GetAllUsers(ctx context.Context) ([]UserInfo, error) {
	s.usersMutex.RLock()
	defer s.usersMutex.RUnlock()

	users := make([]UserInfo, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	return users, nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}
